package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	pkgerrors "github.com/polarbearYc/Equipment-Management-System/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrNotAStudent  = errors.New("该用户不是学生")
)

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, q *dto.ListUsersQuery) ([]dto.UserResponse, int64, error)
	// Create 管理端创建用户，初始密码默认为用户编号
	Create(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	AdminUpdate(ctx context.Context, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, userID string) error
	// ListAdvisedStudents 查询某教师名下的学生（按学生档案中的导师姓名匹配）
	ListAdvisedStudents(ctx context.Context, teacherID string) ([]dto.UserResponse, error)
	// AttachStudent 教师按学号将已注册学生绑定到自己名下
	AttachStudent(ctx context.Context, teacherID, studentCode string) (*dto.UserResponse, error)
	// DetachStudent 教师解除与学生的绑定（清空学生的导师字段）
	DetachStudent(ctx context.Context, teacherID, studentID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, q *dto.ListUsersQuery) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, q.UserType, q.Keyword, offset(q.Page, q.PageSize), q.PageSize)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByCode(ctx, req.UserCode); err == nil {
		return nil, ErrUserCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户编号失败", zap.String("user_code", req.UserCode), zap.Error(err))
		return nil, err
	}

	// 初始密码为用户编号
	hash, err := bcrypt.GenerateFromPassword([]byte(req.UserCode), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		UserCode:     req.UserCode,
		Name:         req.Name,
		Gender:       req.Gender,
		UserType:     req.UserType,
		Role:         role,
		Department:   req.Department,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		IsActive:     true,

		Major:   req.Major,
		Advisor: req.Advisor,

		Title:         req.Title,
		ResearchField: req.ResearchField,

		Position:       req.Position,
		CompanyAddress: req.CompanyAddress,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理端创建用户",
		zap.String("user_id", user.UserID),
		zap.String("user_code", user.UserCode),
		zap.String("role", user.Role))

	return toUserResponse(user), nil
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	applyProfileUpdate(user, req)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户资料失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── AdminUpdate ──────────────────────

func (s *userService) AdminUpdate(ctx context.Context, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	applyProfileUpdate(user, &req.UpdateProfileRequest)
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已更新",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.Bool("is_active", user.IsActive))

	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, userID string) error {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.repo.User.Delete(ctx, userID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListAdvisedStudents ──────────────────────

func (s *userService) ListAdvisedStudents(ctx context.Context, teacherID string) ([]dto.UserResponse, error) {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	students, err := s.repo.User.ListStudentsByAdvisor(ctx, teacher.Name)
	if err != nil {
		s.logger.Error("查询指导学生失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		result = append(result, *toUserResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── AttachStudent ──────────────────────

func (s *userService) AttachStudent(ctx context.Context, teacherID, studentCode string) (*dto.UserResponse, error) {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	student, err := s.repo.User.GetByCode(ctx, studentCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询学生失败", zap.String("user_code", studentCode), zap.Error(err))
		return nil, err
	}
	if student.UserType != model.UserTypeStudent {
		return nil, ErrNotAStudent
	}

	student.Advisor = teacher.Name
	if err := s.repo.User.Update(ctx, student); err != nil {
		s.logger.Error("绑定学生失败", zap.String("student_id", student.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("教师绑定学生",
		zap.String("teacher_id", teacherID),
		zap.String("student_code", studentCode))

	return toUserResponse(student), nil
}

// ────────────────────── DetachStudent ──────────────────────

func (s *userService) DetachStudent(ctx context.Context, teacherID, studentID string) error {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// 只能解除绑定到自己名下的学生
	if student.Advisor != teacher.Name {
		return pkgerrors.ErrPermissionDenied
	}

	student.Advisor = ""
	if err := s.repo.User.Update(ctx, student); err != nil {
		s.logger.Error("解绑学生失败", zap.String("student_id", studentID), zap.Error(err))
		return err
	}

	s.logger.Info("教师解绑学生",
		zap.String("teacher_id", teacherID),
		zap.String("student_id", studentID))

	return nil
}

func applyProfileUpdate(user *model.User, req *dto.UpdateProfileRequest) {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Major != nil {
		user.Major = *req.Major
	}
	if req.Advisor != nil {
		user.Advisor = *req.Advisor
	}
	if req.Title != nil {
		user.Title = *req.Title
	}
	if req.ResearchField != nil {
		user.ResearchField = *req.ResearchField
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.CompanyAddress != nil {
		user.CompanyAddress = *req.CompanyAddress
	}
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		UserID:     u.UserID,
		UserCode:   u.UserCode,
		Name:       u.Name,
		Gender:     u.Gender,
		UserType:   u.UserType,
		Role:       u.Role,
		Department: u.Department,
		Phone:      u.Phone,
		IsActive:   u.IsActive,

		Major:   u.Major,
		Advisor: u.Advisor,

		Title:         u.Title,
		ResearchField: u.ResearchField,

		Position:       u.Position,
		CompanyAddress: u.CompanyAddress,

		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/user_service.go
