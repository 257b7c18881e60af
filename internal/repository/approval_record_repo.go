package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/model"
)

// ApprovalRecordRepository 审批记录数据访问接口（只增不改）
type ApprovalRecordRepository interface {
	Create(ctx context.Context, record *model.ApprovalRecord) error
	ListByBooking(ctx context.Context, bookingID string) ([]model.ApprovalRecord, error)
}

type approvalRecordRepo struct {
	db *gorm.DB
}

// NewApprovalRecordRepo 创建 ApprovalRecordRepository 实例
func NewApprovalRecordRepo(db *gorm.DB) ApprovalRecordRepository {
	return &approvalRecordRepo{db: db}
}

func (r *approvalRecordRepo) Create(ctx context.Context, record *model.ApprovalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *approvalRecordRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.ApprovalRecord, error) {
	var records []model.ApprovalRecord
	err := r.db.WithContext(ctx).
		Preload("Approver").
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}
