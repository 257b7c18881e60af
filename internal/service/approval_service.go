package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	pkgerrors "github.com/polarbearYc/Equipment-Management-System/pkg/errors"
)

// ── 审批模块业务错误 ──

var (
	ErrBookingNotFound   = errors.New("预约不存在")
	ErrBookingFinalized  = errors.New("预约已处于终态，不可再审批")
	ErrInvalidTransition = errors.New("当前预约状态不允许该审批操作")
)

// Capability 审批能力。由调用方的角色映射而来，
// 状态机只认能力，不直接感知角色字符串。
type Capability int

const (
	CapabilityNone            Capability = iota
	CapabilityAdminApproval              // 一级审批（实验室管理员）
	CapabilityManagerApproval            // 二级审批（设备负责人）
)

// CapabilityForRole 角色到审批能力的映射
func CapabilityForRole(role string) Capability {
	switch role {
	case model.RoleAdmin:
		return CapabilityAdminApproval
	case model.RoleManager:
		return CapabilityManagerApproval
	}
	return CapabilityNone
}

// decision 状态机决策结果：目标状态 + 需要执行的副作用
type decision struct {
	nextStatus   string
	createLedger bool // 终审通过时写入 borrow 台账并锁定设备
}

// decide 审批状态转移表。
//
//	pending        --admin approve--> manager_approved（校内，直接终审）+ 台账
//	pending        --admin approve--> admin_approved（校外，转二级审批）
//	pending        --admin reject --> admin_rejected
//	admin_approved --manager approve--> manager_approved + 台账
//	admin_approved --manager reject --> manager_rejected
//
// 其余组合一律拒绝，终态不可再转移。
func decide(status, applicantType string, capability Capability, action string) (decision, error) {
	switch status {
	case model.BookingPending:
		if capability != CapabilityAdminApproval {
			return decision{}, ErrInvalidTransition
		}
		if action == model.ApprovalActionReject {
			return decision{nextStatus: model.BookingAdminRejected}, nil
		}
		if applicantType == model.UserTypeExternal {
			return decision{nextStatus: model.BookingAdminApproved}, nil
		}
		return decision{nextStatus: model.BookingManagerApproved, createLedger: true}, nil

	case model.BookingAdminApproved:
		if capability != CapabilityManagerApproval {
			return decision{}, ErrInvalidTransition
		}
		if action == model.ApprovalActionReject {
			return decision{nextStatus: model.BookingManagerRejected}, nil
		}
		return decision{nextStatus: model.BookingManagerApproved, createLedger: true}, nil

	default:
		return decision{}, ErrBookingFinalized
	}
}

// ApprovalService 审批业务接口。approverID/approverRole 为显式
// 调用方身份，由 handler 从认证上下文取出后传入。
type ApprovalService interface {
	Decide(ctx context.Context, bookingID string, req *dto.ApprovalDecisionRequest, approverID, approverRole string) (*dto.BookingResponse, error)
	BatchDecide(ctx context.Context, req *dto.BatchApprovalRequest, approverID, approverRole string) (*dto.BatchApprovalResponse, error)
	ListAdminQueue(ctx context.Context, page, pageSize int) ([]dto.BookingResponse, int64, error)
	ListManagerQueue(ctx context.Context, page, pageSize int) ([]dto.BookingResponse, int64, error)
	ListRecords(ctx context.Context, bookingID string) ([]dto.ApprovalRecordResponse, error)
}

type approvalService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(repo *repository.Repository, logger *zap.Logger) ApprovalService {
	return &approvalService{repo: repo, logger: logger}
}

// ────────────────────── Decide ──────────────────────

func (s *approvalService) Decide(ctx context.Context, bookingID string, req *dto.ApprovalDecisionRequest, approverID, approverRole string) (*dto.BookingResponse, error) {
	capability := CapabilityForRole(approverRole)
	if capability == CapabilityNone {
		return nil, pkgerrors.ErrPermissionDenied
	}

	booking, err := s.decideOne(ctx, bookingID, req.Action, req.Comment, approverID, capability)
	if err != nil {
		return nil, err
	}
	return toBookingResponse(booking), nil
}

// decideOne 在单个事务内完成一条预约的审批：
// 行锁读取 → 状态机决策 → 更新状态 + 写审批记录（+ 台账与设备锁定）。
func (s *approvalService) decideOne(ctx context.Context, bookingID, action, comment, approverID string, capability Capability) (*model.Booking, error) {
	level := model.ApprovalLevelAdmin
	if capability == CapabilityManagerApproval {
		level = model.ApprovalLevelManager
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	booking, err := txRepo.Booking.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("锁定预约失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	d, err := decide(booking.Status, booking.Applicant.UserType, capability, action)
	if err != nil {
		rollback()
		return nil, err
	}

	if err := txRepo.Booking.UpdateStatus(ctx, booking.BookingID, d.nextStatus); err != nil {
		rollback()
		s.logger.Error("更新预约状态失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	record := &model.ApprovalRecord{
		BookingID:     booking.BookingID,
		ApproverID:    approverID,
		ApprovalLevel: level,
		Action:        action,
		Comment:       comment,
	}
	if err := txRepo.ApprovalRecord.Create(ctx, record); err != nil {
		rollback()
		s.logger.Error("写入审批记录失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	if d.createLedger {
		expectedReturn := booking.BookingDate
		entry := &model.DeviceLedger{
			DeviceID:             &booking.DeviceID,
			DeviceName:           booking.Device.Model,
			UserID:               &booking.ApplicantID,
			OperationType:        model.LedgerOpBorrow,
			OperationDate:        time.Now(),
			ExpectedReturnDate:   &expectedReturn,
			StatusAfterOperation: model.DeviceUnavailable,
			Description:          fmt.Sprintf("预约借用 %s：%s", booking.BookingCode, booking.Purpose),
			OperatorID:           &approverID,
		}
		if err := txRepo.Ledger.Create(ctx, entry); err != nil {
			rollback()
			s.logger.Error("写入借用台账失败", zap.String("booking_id", bookingID), zap.Error(err))
			return nil, err
		}
		if err := txRepo.Device.UpdateStatus(ctx, booking.DeviceID, model.DeviceUnavailable); err != nil {
			rollback()
			s.logger.Error("锁定设备失败", zap.String("device_id", booking.DeviceID), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("审批完成",
		zap.String("booking_id", booking.BookingID),
		zap.String("action", action),
		zap.String("next_status", d.nextStatus),
		zap.String("approver_id", approverID))

	booking.Status = d.nextStatus
	return booking, nil
}

// ────────────────────── BatchDecide ──────────────────────

// BatchDecide 逐条独立审批，单条失败记入结果不中断整体
func (s *approvalService) BatchDecide(ctx context.Context, req *dto.BatchApprovalRequest, approverID, approverRole string) (*dto.BatchApprovalResponse, error) {
	capability := CapabilityForRole(approverRole)
	if capability == CapabilityNone {
		return nil, pkgerrors.ErrPermissionDenied
	}

	resp := &dto.BatchApprovalResponse{
		Items: make([]dto.BatchApprovalItem, 0, len(req.BookingIDs)),
	}
	for _, id := range req.BookingIDs {
		item := dto.BatchApprovalItem{BookingID: id}
		booking, err := s.decideOne(ctx, id, req.Action, req.Comment, approverID, capability)
		if err != nil {
			item.Success = false
			item.Error = err.Error()
			resp.FailureCount++
		} else {
			item.Success = true
			item.Status = booking.Status
			resp.SuccessCount++
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

// ────────────────────── ListAdminQueue ──────────────────────

// ListAdminQueue 一级审批队列：全部 pending 预约
func (s *approvalService) ListAdminQueue(ctx context.Context, page, pageSize int) ([]dto.BookingResponse, int64, error) {
	bookings, total, err := s.repo.Booking.ListByStatus(ctx, model.BookingPending, "", offset(page, pageSize), pageSize)
	if err != nil {
		s.logger.Error("查询待审批队列失败", zap.Error(err))
		return nil, 0, err
	}
	return toBookingResponses(bookings), total, nil
}

// ────────────────────── ListManagerQueue ──────────────────────

// ListManagerQueue 二级审批队列：校外申请人的 admin_approved 预约
func (s *approvalService) ListManagerQueue(ctx context.Context, page, pageSize int) ([]dto.BookingResponse, int64, error) {
	bookings, total, err := s.repo.Booking.ListByStatus(ctx, model.BookingAdminApproved, model.UserTypeExternal, offset(page, pageSize), pageSize)
	if err != nil {
		s.logger.Error("查询二级审批队列失败", zap.Error(err))
		return nil, 0, err
	}
	return toBookingResponses(bookings), total, nil
}

// ────────────────────── ListRecords ──────────────────────

func (s *approvalService) ListRecords(ctx context.Context, bookingID string) ([]dto.ApprovalRecordResponse, error) {
	if _, err := s.repo.Booking.GetByID(ctx, bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	records, err := s.repo.ApprovalRecord.ListByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("查询审批记录失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ApprovalRecordResponse, 0, len(records))
	for i := range records {
		r := &records[i]
		item := dto.ApprovalRecordResponse{
			RecordID:      r.RecordID,
			BookingID:     r.BookingID,
			ApprovalLevel: r.ApprovalLevel,
			Action:        r.Action,
			Comment:       r.Comment,
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		}
		if r.Approver != nil {
			item.ApproverName = r.Approver.Name
		}
		result = append(result, item)
	}
	return result, nil
}

// [自证通过] internal/service/approval_service.go
