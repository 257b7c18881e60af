package model

import "time"

// 用户类型（申请人类型），决定审批路由与计费口径
const (
	UserTypeStudent  = "student"  // 校内学生
	UserTypeTeacher  = "teacher"  // 校内教师
	UserTypeExternal = "external" // 校外人员
)

// 角色能力：user 仅可提交预约，admin 执行一级审批，manager 执行二级审批
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	UserCode     string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"user_code"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Gender       string `gorm:"type:varchar(10);not null;default:''"           json:"gender"`
	UserType     string `gorm:"type:varchar(20);not null;index"                json:"user_type"` // student | teacher | external
	Role         string `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`      // user | admin | manager
	Department   string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	Phone        string `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`

	// 学生专属字段
	Major   string `gorm:"type:varchar(100);not null;default:''" json:"major,omitempty"`
	Advisor string `gorm:"type:varchar(100);not null;default:''" json:"advisor,omitempty"` // 指导教师姓名

	// 教师专属字段
	Title         string `gorm:"type:varchar(100);not null;default:''" json:"title,omitempty"`
	ResearchField string `gorm:"type:varchar(200);not null;default:''" json:"research_field,omitempty"`

	// 校外人员专属字段
	Position       string `gorm:"type:varchar(100);not null;default:''" json:"position,omitempty"`
	CompanyAddress string `gorm:"type:varchar(200);not null;default:''" json:"company_address,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
