package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	pkgerrors "github.com/polarbearYc/Equipment-Management-System/pkg/errors"
)

// ── 测试辅助 ──

type approvalTestEnv struct {
	svc      ApprovalService
	users    *mockUserRepo
	devices  *mockDeviceRepo
	bookings *mockBookingRepo
	records  *mockApprovalRecordRepo
	ledgers  *mockLedgerRepo
}

func setupTestApprovalService() *approvalTestEnv {
	users := newMockUserRepo()
	devices := newMockDeviceRepo()
	bookings := newMockBookingRepo(users, devices)
	records := newMockApprovalRecordRepo()
	ledgers := newMockLedgerRepo()

	repo := &repository.Repository{
		User:           users,
		Device:         devices,
		Booking:        bookings,
		ApprovalRecord: records,
		Ledger:         ledgers,
		Report:         newMockReportRepo(),
	}

	ctx := context.Background()
	users.Create(ctx, &model.User{UserCode: "S2021001", Name: "张三", UserType: model.UserTypeStudent, Role: model.RoleUser})
	users.Create(ctx, &model.User{UserCode: "E0001", Name: "王五", UserType: model.UserTypeExternal, Role: model.RoleUser})
	users.Create(ctx, &model.User{UserCode: "A0001", Name: "管理员", UserType: model.UserTypeTeacher, Role: model.RoleAdmin})
	users.Create(ctx, &model.User{UserCode: "M0001", Name: "负责人", UserType: model.UserTypeTeacher, Role: model.RoleManager})
	devices.Create(ctx, &model.Device{DeviceCode: "DEV-001", Model: "扫描电镜", PriceExternal: 500, Status: model.DeviceAvailable})

	return &approvalTestEnv{
		svc:      NewApprovalService(repo, zap.NewNop()),
		users:    users,
		devices:  devices,
		bookings: bookings,
		records:  records,
		ledgers:  ledgers,
	}
}

func (e *approvalTestEnv) newBooking(t *testing.T, applicantID, status string) *model.Booking {
	t.Helper()
	booking := &model.Booking{
		BookingCode: newBookingCode(),
		ApplicantID: applicantID,
		DeviceID:    "dev-DEV-001",
		BookingDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Purpose:     "材料表面分析",
		Status:      status,
		CreateTime:  time.Now(),
	}
	if err := e.bookings.Create(context.Background(), booking); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
	return booking
}

// ── 状态转移表测试 ──

func TestDecide_TransitionTable(t *testing.T) {
	cases := []struct {
		name          string
		status        string
		applicantType string
		capability    Capability
		action        string
		wantStatus    string
		wantLedger    bool
		wantErr       error
	}{
		{"校内学生管理员通过直接终审", model.BookingPending, model.UserTypeStudent, CapabilityAdminApproval, model.ApprovalActionApprove, model.BookingManagerApproved, true, nil},
		{"校内教师管理员通过直接终审", model.BookingPending, model.UserTypeTeacher, CapabilityAdminApproval, model.ApprovalActionApprove, model.BookingManagerApproved, true, nil},
		{"校外人员管理员通过转二级", model.BookingPending, model.UserTypeExternal, CapabilityAdminApproval, model.ApprovalActionApprove, model.BookingAdminApproved, false, nil},
		{"管理员驳回", model.BookingPending, model.UserTypeStudent, CapabilityAdminApproval, model.ApprovalActionReject, model.BookingAdminRejected, false, nil},
		{"负责人二级通过", model.BookingAdminApproved, model.UserTypeExternal, CapabilityManagerApproval, model.ApprovalActionApprove, model.BookingManagerApproved, true, nil},
		{"负责人二级驳回", model.BookingAdminApproved, model.UserTypeExternal, CapabilityManagerApproval, model.ApprovalActionReject, model.BookingManagerRejected, false, nil},
		{"负责人不能处理一级", model.BookingPending, model.UserTypeExternal, CapabilityManagerApproval, model.ApprovalActionApprove, "", false, ErrInvalidTransition},
		{"管理员不能处理二级", model.BookingAdminApproved, model.UserTypeExternal, CapabilityAdminApproval, model.ApprovalActionApprove, "", false, ErrInvalidTransition},
		{"终态不可再审批", model.BookingManagerApproved, model.UserTypeStudent, CapabilityAdminApproval, model.ApprovalActionApprove, "", false, ErrBookingFinalized},
		{"驳回终态不可再审批", model.BookingAdminRejected, model.UserTypeStudent, CapabilityAdminApproval, model.ApprovalActionApprove, "", false, ErrBookingFinalized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := decide(tc.status, tc.applicantType, tc.capability, tc.action)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("期望 %v，实际: %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decide 应成功: %v", err)
			}
			if d.nextStatus != tc.wantStatus {
				t.Errorf("期望状态 %s，实际=%s", tc.wantStatus, d.nextStatus)
			}
			if d.createLedger != tc.wantLedger {
				t.Errorf("期望 createLedger=%v，实际=%v", tc.wantLedger, d.createLedger)
			}
		})
	}
}

// ── Decide 测试 ──

func TestApprovalService_Decide_InternalDirectApprove(t *testing.T) {
	env := setupTestApprovalService()
	booking := env.newBooking(t, "user-S2021001", model.BookingPending)

	req := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionApprove, Comment: "同意"}
	result, err := env.svc.Decide(context.Background(), booking.BookingID, req, "user-A0001", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	if result.Status != model.BookingManagerApproved {
		t.Errorf("校内申请人一级通过应直达终审，期望 manager_approved，实际=%s", result.Status)
	}

	// 借用台账与设备锁定
	if len(env.ledgers.entries) != 1 {
		t.Fatalf("期望 1 条台账，实际=%d", len(env.ledgers.entries))
	}
	entry := env.ledgers.entries[0]
	if entry.OperationType != model.LedgerOpBorrow {
		t.Errorf("期望台账类型 borrow，实际=%s", entry.OperationType)
	}
	if entry.StatusAfterOperation != model.DeviceUnavailable {
		t.Errorf("期望操作后状态 unavailable，实际=%s", entry.StatusAfterOperation)
	}
	if entry.ExpectedReturnDate == nil || !entry.ExpectedReturnDate.Equal(booking.BookingDate) {
		t.Error("预计归还日期应为预约日期")
	}
	device, _ := env.devices.GetByID(context.Background(), "dev-DEV-001")
	if device.Status != model.DeviceUnavailable {
		t.Errorf("设备应被锁定为 unavailable，实际=%s", device.Status)
	}

	// 审批记录
	records, _ := env.records.ListByBooking(context.Background(), booking.BookingID)
	if len(records) != 1 {
		t.Fatalf("期望 1 条审批记录，实际=%d", len(records))
	}
	if records[0].ApprovalLevel != model.ApprovalLevelAdmin {
		t.Errorf("期望审批级别 admin，实际=%s", records[0].ApprovalLevel)
	}
}

func TestApprovalService_Decide_ExternalTwoStep(t *testing.T) {
	env := setupTestApprovalService()
	booking := env.newBooking(t, "user-E0001", model.BookingPending)
	ctx := context.Background()

	// 一级通过：进入 admin_approved，不写台账
	req := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionApprove}
	result, err := env.svc.Decide(ctx, booking.BookingID, req, "user-A0001", model.RoleAdmin)
	if err != nil {
		t.Fatalf("一级审批应成功: %v", err)
	}
	if result.Status != model.BookingAdminApproved {
		t.Errorf("校外申请人一级通过应为 admin_approved，实际=%s", result.Status)
	}
	if len(env.ledgers.entries) != 0 {
		t.Errorf("一级通过不应写台账，实际=%d 条", len(env.ledgers.entries))
	}

	// 二级通过：终审 + 台账
	result, err = env.svc.Decide(ctx, booking.BookingID, req, "user-M0001", model.RoleManager)
	if err != nil {
		t.Fatalf("二级审批应成功: %v", err)
	}
	if result.Status != model.BookingManagerApproved {
		t.Errorf("期望 manager_approved，实际=%s", result.Status)
	}
	if len(env.ledgers.entries) != 1 {
		t.Errorf("二级通过应写 1 条台账，实际=%d", len(env.ledgers.entries))
	}

	records, _ := env.records.ListByBooking(ctx, booking.BookingID)
	if len(records) != 2 {
		t.Fatalf("期望 2 条审批记录，实际=%d", len(records))
	}
	if records[1].ApprovalLevel != model.ApprovalLevelManager {
		t.Errorf("第二条记录级别应为 manager，实际=%s", records[1].ApprovalLevel)
	}
}

func TestApprovalService_Decide_RejectTerminal(t *testing.T) {
	env := setupTestApprovalService()
	booking := env.newBooking(t, "user-S2021001", model.BookingPending)
	ctx := context.Background()

	reject := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionReject, Comment: "时间冲突"}
	result, err := env.svc.Decide(ctx, booking.BookingID, reject, "user-A0001", model.RoleAdmin)
	if err != nil {
		t.Fatalf("驳回应成功: %v", err)
	}
	if result.Status != model.BookingAdminRejected {
		t.Errorf("期望 admin_rejected，实际=%s", result.Status)
	}

	// 终态后再审批应拒绝
	approve := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionApprove}
	_, err = env.svc.Decide(ctx, booking.BookingID, approve, "user-A0001", model.RoleAdmin)
	if !errors.Is(err, ErrBookingFinalized) {
		t.Errorf("期望 ErrBookingFinalized，实际: %v", err)
	}
	// 失败的审批不应留下记录
	records, _ := env.records.ListByBooking(ctx, booking.BookingID)
	if len(records) != 1 {
		t.Errorf("终态审批失败不应新增记录，期望 1 条，实际=%d", len(records))
	}
}

func TestApprovalService_Decide_UnauthorizedRole(t *testing.T) {
	env := setupTestApprovalService()
	booking := env.newBooking(t, "user-S2021001", model.BookingPending)

	req := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionApprove}
	_, err := env.svc.Decide(context.Background(), booking.BookingID, req, "user-S2021001", model.RoleUser)
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际: %v", err)
	}

	// 无权限的调用不应产生任何副作用
	records, _ := env.records.ListByBooking(context.Background(), booking.BookingID)
	if len(records) != 0 {
		t.Errorf("无权限审批不应写记录，实际=%d 条", len(records))
	}
	got, _ := env.bookings.GetByID(context.Background(), booking.BookingID)
	if got.Status != model.BookingPending {
		t.Errorf("预约状态不应变化，实际=%s", got.Status)
	}
}

func TestApprovalService_Decide_NotFound(t *testing.T) {
	env := setupTestApprovalService()

	req := &dto.ApprovalDecisionRequest{Action: model.ApprovalActionApprove}
	_, err := env.svc.Decide(context.Background(), "bk-missing", req, "user-A0001", model.RoleAdmin)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("期望 ErrBookingNotFound，实际: %v", err)
	}
}

// ── BatchDecide 测试 ──

func TestApprovalService_BatchDecide_PartialFailure(t *testing.T) {
	env := setupTestApprovalService()
	ctx := context.Background()
	b1 := env.newBooking(t, "user-S2021001", model.BookingPending)
	b3 := env.newBooking(t, "user-E0001", model.BookingPending)

	req := &dto.BatchApprovalRequest{
		BookingIDs: []string{b1.BookingID, "bk-missing", b3.BookingID},
		Action:     model.ApprovalActionApprove,
	}
	result, err := env.svc.BatchDecide(ctx, req, "user-A0001", model.RoleAdmin)
	if err != nil {
		t.Fatalf("BatchDecide 应成功返回: %v", err)
	}

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("期望成功 2 失败 1，实际成功=%d 失败=%d", result.SuccessCount, result.FailureCount)
	}
	if len(result.Items) != 3 {
		t.Fatalf("期望 3 条结果，实际=%d", len(result.Items))
	}
	if !result.Items[0].Success || result.Items[0].Status != model.BookingManagerApproved {
		t.Errorf("第 1 条应成功且为 manager_approved，实际=%+v", result.Items[0])
	}
	if result.Items[1].Success {
		t.Error("第 2 条（不存在的预约）应失败")
	}
	if !result.Items[2].Success || result.Items[2].Status != model.BookingAdminApproved {
		t.Errorf("第 3 条（校外）应成功且为 admin_approved，实际=%+v", result.Items[2])
	}

	// 单条失败不影响其他条目落库
	got1, _ := env.bookings.GetByID(ctx, b1.BookingID)
	if got1.Status != model.BookingManagerApproved {
		t.Errorf("第 1 条预约状态应已更新，实际=%s", got1.Status)
	}
}

func TestApprovalService_BatchDecide_UnauthorizedRole(t *testing.T) {
	env := setupTestApprovalService()
	b := env.newBooking(t, "user-S2021001", model.BookingPending)

	req := &dto.BatchApprovalRequest{BookingIDs: []string{b.BookingID}, Action: model.ApprovalActionApprove}
	_, err := env.svc.BatchDecide(context.Background(), req, "user-S2021001", model.RoleUser)
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}
}

// ── 审批队列测试 ──

func TestApprovalService_ListManagerQueue_OnlyExternalAdminApproved(t *testing.T) {
	env := setupTestApprovalService()
	ctx := context.Background()

	env.newBooking(t, "user-S2021001", model.BookingPending)
	external := env.newBooking(t, "user-E0001", model.BookingAdminApproved)
	env.newBooking(t, "user-E0001", model.BookingPending)

	queue, total, err := env.svc.ListManagerQueue(ctx, 1, 20)
	if err != nil {
		t.Fatalf("ListManagerQueue 应成功: %v", err)
	}
	if total != 1 || len(queue) != 1 {
		t.Fatalf("二级队列应只含校外 admin_approved 预约，期望 1 条，实际=%d", len(queue))
	}
	if queue[0].BookingID != external.BookingID {
		t.Errorf("队列中的预约不正确: %s", queue[0].BookingID)
	}

	pending, total, err := env.svc.ListAdminQueue(ctx, 1, 20)
	if err != nil {
		t.Fatalf("ListAdminQueue 应成功: %v", err)
	}
	if total != 2 || len(pending) != 2 {
		t.Errorf("一级队列应含全部 pending 预约，期望 2 条，实际=%d", len(pending))
	}
}
