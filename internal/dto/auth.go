package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	UserCode string `json:"user_code" binding:"required"`
	Password string `json:"password"  binding:"required"`
}

// RegisterRequest 注册请求。user_type 决定需要填写的扩展字段。
type RegisterRequest struct {
	UserCode   string `json:"user_code"  binding:"required,min=3,max=30"`
	Name       string `json:"name"       binding:"required,min=2,max=100"`
	Password   string `json:"password"   binding:"required,min=8,max=30"`
	UserType   string `json:"user_type"  binding:"required,oneof=student teacher external"`
	Gender     string `json:"gender"     binding:"omitempty,oneof=male female"`
	Department string `json:"department"`
	Phone      string `json:"phone"`

	// 学生字段
	Major   string `json:"major"`
	Advisor string `json:"advisor"`

	// 教师字段
	Title         string `json:"title"`
	ResearchField string `json:"research_field"`

	// 校外人员字段
	Position       string `json:"position"`
	CompanyAddress string `json:"company_address"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=30"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// [自证通过] internal/dto/auth.go
