package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polarbearYc/Equipment-Management-System/internal/dto"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	pkgerrors "github.com/polarbearYc/Equipment-Management-System/pkg/errors"
)

type bookingTestEnv struct {
	svc      BookingService
	users    *mockUserRepo
	devices  *mockDeviceRepo
	bookings *mockBookingRepo
}

func setupTestBookingService(t *testing.T) *bookingTestEnv {
	t.Helper()
	users := newMockUserRepo()
	devices := newMockDeviceRepo()
	bookings := newMockBookingRepo(users, devices)

	repo := &repository.Repository{
		User:    users,
		Device:  devices,
		Booking: bookings,
	}

	ctx := context.Background()
	users.Create(ctx, &model.User{UserCode: "S2021001", Name: "张三", UserType: model.UserTypeStudent, Role: model.RoleUser})
	users.Create(ctx, &model.User{UserCode: "A0001", Name: "管理员", UserType: model.UserTypeTeacher, Role: model.RoleAdmin})
	devices.Create(ctx, &model.Device{DeviceCode: "DEV-001", Model: "扫描电镜", Status: model.DeviceAvailable})
	devices.Create(ctx, &model.Device{DeviceCode: "DEV-009", Model: "报废光谱仪", Status: model.DeviceDiscarded})

	return &bookingTestEnv{
		svc:      NewBookingService(repo, zap.NewNop()),
		users:    users,
		devices:  devices,
		bookings: bookings,
	}
}

func TestBookingService_Create(t *testing.T) {
	env := setupTestBookingService(t)

	req := &dto.CreateBookingRequest{
		DeviceID:    "dev-DEV-001",
		BookingDate: "2026-09-10",
		TimeSlot:    "09:00-11:00",
		Purpose:     "样品表面形貌观察",
	}
	resp, err := env.svc.Create(context.Background(), req, "user-S2021001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if resp.Status != model.BookingPending {
		t.Errorf("新预约应为待审批状态，实际=%s", resp.Status)
	}
	wantPrefix := "BK" + time.Now().Format("20060102")
	if !strings.HasPrefix(resp.BookingCode, wantPrefix) {
		t.Errorf("预约编号应以 %s 开头，实际=%s", wantPrefix, resp.BookingCode)
	}
	if len(resp.BookingCode) != len(wantPrefix)+8 {
		t.Errorf("预约编号长度不正确: %s", resp.BookingCode)
	}
	if resp.DeviceCode != "DEV-001" || resp.DeviceModel != "扫描电镜" {
		t.Errorf("响应应带设备信息，实际=%+v", resp)
	}

	stored, err := env.bookings.GetByID(context.Background(), resp.BookingID)
	if err != nil {
		t.Fatalf("预约应已持久化: %v", err)
	}
	if stored.ApplicantID != "user-S2021001" {
		t.Errorf("申请人不正确: %s", stored.ApplicantID)
	}
}

func TestBookingService_Create_InvalidDevice(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	// 不存在的设备
	req := &dto.CreateBookingRequest{DeviceID: "dev-missing", BookingDate: "2026-09-10", Purpose: "测试"}
	if _, err := env.svc.Create(ctx, req, "user-S2021001"); !errors.Is(err, ErrBookingDeviceInvalid) {
		t.Errorf("不存在的设备应返回 ErrBookingDeviceInvalid，实际: %v", err)
	}

	// 已报废的设备
	req = &dto.CreateBookingRequest{DeviceID: "dev-DEV-009", BookingDate: "2026-09-10", Purpose: "测试"}
	if _, err := env.svc.Create(ctx, req, "user-S2021001"); !errors.Is(err, ErrBookingDeviceInvalid) {
		t.Errorf("报废设备应返回 ErrBookingDeviceInvalid，实际: %v", err)
	}

	if len(env.bookings.bookings) != 0 {
		t.Errorf("失败的预约不应落库，实际=%d", len(env.bookings.bookings))
	}
}

func TestBookingService_Create_InvalidDate(t *testing.T) {
	env := setupTestBookingService(t)

	req := &dto.CreateBookingRequest{DeviceID: "dev-DEV-001", BookingDate: "2026/09/10", Purpose: "测试"}
	if _, err := env.svc.Create(context.Background(), req, "user-S2021001"); !errors.Is(err, ErrBookingDateInvalid) {
		t.Errorf("非法日期应返回 ErrBookingDateInvalid，实际: %v", err)
	}
}

func TestBookingService_GetByID_Permission(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	booking := &model.Booking{
		BookingCode: newBookingCode(),
		ApplicantID: "user-S2021001",
		DeviceID:    "dev-DEV-001",
		BookingDate: time.Now(),
		Status:      model.BookingPending,
		CreateTime:  time.Now(),
	}
	env.bookings.Create(ctx, booking)

	// 本人可查
	if _, err := env.svc.GetByID(ctx, booking.BookingID, "user-S2021001", model.RoleUser); err != nil {
		t.Errorf("本人应可查询自己的预约: %v", err)
	}

	// 其他普通用户不可查
	env.users.Create(ctx, &model.User{UserCode: "S2021002", Name: "李四", UserType: model.UserTypeStudent, Role: model.RoleUser})
	if _, err := env.svc.GetByID(ctx, booking.BookingID, "user-S2021002", model.RoleUser); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("他人预约应返回权限错误，实际: %v", err)
	}

	// 管理员可查任意预约
	if _, err := env.svc.GetByID(ctx, booking.BookingID, "user-A0001", model.RoleAdmin); err != nil {
		t.Errorf("管理员应可查询任意预约: %v", err)
	}

	// 不存在的预约
	if _, err := env.svc.GetByID(ctx, "bk-999", "user-S2021001", model.RoleUser); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("应返回 ErrBookingNotFound，实际: %v", err)
	}
}

func TestBookingService_ListMine(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	for _, status := range []string{model.BookingPending, model.BookingManagerApproved, model.BookingAdminRejected} {
		env.bookings.Create(ctx, &model.Booking{
			BookingCode: newBookingCode(),
			ApplicantID: "user-S2021001",
			DeviceID:    "dev-DEV-001",
			BookingDate: time.Now(),
			Status:      status,
			CreateTime:  time.Now(),
		})
	}
	// 其他人的预约不应出现
	env.bookings.Create(ctx, &model.Booking{
		BookingCode: newBookingCode(),
		ApplicantID: "user-A0001",
		DeviceID:    "dev-DEV-001",
		BookingDate: time.Now(),
		Status:      model.BookingPending,
		CreateTime:  time.Now(),
	})

	list, total, err := env.svc.ListMine(ctx, "user-S2021001", &dto.ListBookingsQuery{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Errorf("期望 3 条预约，实际 total=%d len=%d", total, len(list))
	}

	// 状态过滤
	list, total, err = env.svc.ListMine(ctx, "user-S2021001", &dto.ListBookingsQuery{Status: model.BookingPending, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if total != 1 || list[0].Status != model.BookingPending {
		t.Errorf("状态过滤不正确: total=%d", total)
	}
}

func TestOffset(t *testing.T) {
	if got := offset(1, 20); got != 0 {
		t.Errorf("第一页偏移应为 0，实际=%d", got)
	}
	if got := offset(3, 10); got != 20 {
		t.Errorf("期望偏移 20，实际=%d", got)
	}
	if got := offset(0, 10); got != 0 {
		t.Errorf("非法页码应按第一页处理，实际=%d", got)
	}
}
