package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 报表类型
const (
	ReportTypeWeek   = "week"
	ReportTypeMonth  = "month"
	ReportTypeYear   = "year"
	ReportTypeCustom = "custom"
)

// ── 报表快照结构 ──

// ReportSummary 汇总统计
type ReportSummary struct {
	TotalBookings int     `json:"total_bookings"`
	ApprovedCount int     `json:"approved_count"`
	RejectedCount int     `json:"rejected_count"`
	PendingCount  int     `json:"pending_count"`
	TotalDevices  int     `json:"total_devices"`
	TotalUsers    int     `json:"total_users"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// DeviceStat 按设备统计（仅含统计区间内有审批通过预约的设备）
type DeviceStat struct {
	DeviceCode   string  `json:"device_code"`
	DeviceModel  string  `json:"device_model"`
	BookingCount int     `json:"booking_count"`
	Revenue      float64 `json:"revenue"`
}

// UserTypeStat 按用户类型统计
type UserTypeStat struct {
	UserType     string `json:"applicant_user_type"`
	BookingCount int    `json:"booking_count"`
	UserCount    int    `json:"user_count"`
}

// DateStat 按日期统计（用于图表），按日期升序
type DateStat struct {
	BookingDate  string `json:"booking_date"` // "2006-01-02"
	BookingCount int    `json:"booking_count"`
}

// DeviceUsage 设备使用率统计（覆盖全部设备，含零预约设备）
type DeviceUsage struct {
	DeviceCode   string  `json:"device_code"`
	DeviceModel  string  `json:"device_model"`
	BookingCount int     `json:"booking_count"`
	UsageHours   int     `json:"usage_hours"`
	UsageRate    float64 `json:"usage_rate"` // 百分比，保留两位小数
	Revenue      float64 `json:"revenue"`    // 校外收费
}

// ReportData 报表快照，持久化为 JSONB。
// 汇总标量同时冗余在 Report 行上用于列表页，快照是生成时刻的缓存，
// 不随底层数据变化。
type ReportData struct {
	Summary       ReportSummary  `json:"summary"`
	DeviceStats   []DeviceStat   `json:"device_stats"`
	UserTypeStats []UserTypeStat `json:"user_type_stats"`
	DateStats     []DateStat     `json:"date_stats"`
	DeviceUsage   []DeviceUsage  `json:"device_usage"`
}

// Scan 实现 sql.Scanner，从 JSONB 反序列化
func (d *ReportData) Scan(src interface{}) error {
	if src == nil {
		*d = ReportData{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("ReportData.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, d)
}

// Value 实现 driver.Valuer，序列化为 JSONB
func (d ReportData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Report 报表表 — 对应 reports
// 同一 (report_type, start_date, end_date) 的非 custom 报表只生成一次，
// 超过保留期后由 cleanup-reports 命令删除。
type Report struct {
	ReportID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	ReportType    string     `gorm:"type:varchar(20);not null;index:idx_reports_window" json:"report_type"`
	ReportName    string     `gorm:"type:varchar(200);not null"                     json:"report_name"`
	StartDate     time.Time  `gorm:"type:date;not null;index:idx_reports_window"    json:"start_date"`
	EndDate       time.Time  `gorm:"type:date;not null;index:idx_reports_window"    json:"end_date"`
	ReportData    ReportData `gorm:"type:jsonb;not null"                            json:"report_data"`
	TotalBookings int        `gorm:"not null;default:0"                             json:"total_bookings"`
	TotalDevices  int        `gorm:"not null;default:0"                             json:"total_devices"`
	TotalUsers    int        `gorm:"not null;default:0"                             json:"total_users"`
	TotalRevenue  float64    `gorm:"type:numeric(12,2);not null;default:0"          json:"total_revenue"`
	GeneratedBy   *string    `gorm:"type:uuid"                                      json:"generated_by,omitempty"` // 自动任务为 NULL
	GeneratedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"generated_at"`

	// 关联
	Generator *User `gorm:"foreignKey:GeneratedBy;references:UserID" json:"generator,omitempty"`
}

func (Report) TableName() string { return "reports" }

// [自证通过] internal/model/report.go
