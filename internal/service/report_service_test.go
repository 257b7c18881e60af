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
)

// ── 测试辅助 ──

type reportTestEnv struct {
	svc      ReportService
	users    *mockUserRepo
	devices  *mockDeviceRepo
	bookings *mockBookingRepo
	reports  *mockReportRepo
}

func setupTestReportService() *reportTestEnv {
	users := newMockUserRepo()
	devices := newMockDeviceRepo()
	bookings := newMockBookingRepo(users, devices)
	reports := newMockReportRepo()

	repo := &repository.Repository{
		User:           users,
		Device:         devices,
		Booking:        bookings,
		ApprovalRecord: newMockApprovalRecordRepo(),
		Ledger:         newMockLedgerRepo(),
		Report:         reports,
	}

	return &reportTestEnv{
		svc:      NewReportService(repo, zap.NewNop()),
		users:    users,
		devices:  devices,
		bookings: bookings,
		reports:  reports,
	}
}

func (e *reportTestEnv) seedBooking(t *testing.T, applicantID, deviceID, date, status string) {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("日期解析失败: %v", err)
	}
	booking := &model.Booking{
		BookingCode: newBookingCode(),
		ApplicantID: applicantID,
		DeviceID:    deviceID,
		BookingDate: d,
		Status:      status,
		CreateTime:  time.Now(),
	}
	if err := e.bookings.Create(context.Background(), booking); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
}

// ── 统计区间推导测试 ──

func TestReportWindow(t *testing.T) {
	cases := []struct {
		name       string
		reportType string
		base       string
		wantStart  string
		wantEnd    string
	}{
		{"周报以周一为起点", model.ReportTypeWeek, "2026-08-26", "2026-08-24", "2026-08-30"},
		{"周一当天", model.ReportTypeWeek, "2026-08-24", "2026-08-24", "2026-08-30"},
		{"周日归入本周", model.ReportTypeWeek, "2026-08-30", "2026-08-24", "2026-08-30"},
		{"月报自然月", model.ReportTypeMonth, "2026-09-15", "2026-09-01", "2026-09-30"},
		{"闰年二月", model.ReportTypeMonth, "2024-02-15", "2024-02-01", "2024-02-29"},
		{"平年二月", model.ReportTypeMonth, "2026-02-10", "2026-02-01", "2026-02-28"},
		{"年报自然年", model.ReportTypeYear, "2026-06-01", "2026-01-01", "2026-12-31"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, _ := time.Parse("2006-01-02", tc.base)
			start, end := reportWindow(tc.reportType, base)
			if got := start.Format("2006-01-02"); got != tc.wantStart {
				t.Errorf("期望开始 %s，实际=%s", tc.wantStart, got)
			}
			if got := end.Format("2006-01-02"); got != tc.wantEnd {
				t.Errorf("期望结束 %s，实际=%s", tc.wantEnd, got)
			}
		})
	}
}

// ── 聚合测试 ──

func TestReportService_Generate_Aggregation(t *testing.T) {
	env := setupTestReportService()
	ctx := context.Background()

	env.users.Create(ctx, &model.User{UserCode: "S1", Name: "学生甲", UserType: model.UserTypeStudent})
	env.users.Create(ctx, &model.User{UserCode: "E1", Name: "校外乙", UserType: model.UserTypeExternal})
	env.users.Create(ctx, &model.User{UserCode: "E2", Name: "校外丙", UserType: model.UserTypeExternal})
	env.users.Create(ctx, &model.User{UserCode: "T1", Name: "教师丁", UserType: model.UserTypeTeacher})
	env.devices.Create(ctx, &model.Device{DeviceCode: "DEV-001", Model: "扫描电镜", PriceExternal: 500})
	env.devices.Create(ctx, &model.Device{DeviceCode: "DEV-002", Model: "离心机", PriceExternal: 300})

	// 统计区间 2026-09-07 ~ 2026-09-13（7 天）
	env.seedBooking(t, "user-S1", "dev-DEV-001", "2026-09-08", model.BookingManagerApproved)
	env.seedBooking(t, "user-E1", "dev-DEV-001", "2026-09-09", model.BookingManagerApproved)
	env.seedBooking(t, "user-E2", "dev-DEV-001", "2026-09-09", model.BookingManagerApproved)
	env.seedBooking(t, "user-S1", "dev-DEV-001", "2026-09-10", model.BookingAdminRejected)
	env.seedBooking(t, "user-E1", "dev-DEV-001", "2026-09-11", model.BookingPending)
	// 二级审批中的预约只计入总数，不计入待审批
	env.seedBooking(t, "user-T1", "dev-DEV-002", "2026-09-12", model.BookingAdminApproved)
	// 区间之外的预约不应计入
	env.seedBooking(t, "user-S1", "dev-DEV-001", "2026-09-20", model.BookingManagerApproved)

	req := &dto.GenerateReportRequest{
		ReportType: model.ReportTypeCustom,
		StartDate:  "2026-09-07",
		EndDate:    "2026-09-13",
	}
	report, err := env.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}

	sum := report.ReportData.Summary
	if sum.TotalBookings != 6 {
		t.Errorf("期望预约总数 6，实际=%d", sum.TotalBookings)
	}
	if sum.ApprovedCount != 3 || sum.RejectedCount != 1 || sum.PendingCount != 1 {
		t.Errorf("审批状态统计不正确: %+v", sum)
	}
	// 用户数为有审批通过预约的去重申请人数，教师丁无通过预约不计入
	if sum.TotalDevices != 2 || sum.TotalUsers != 3 {
		t.Errorf("设备/用户总数不正确: %+v", sum)
	}
	// 校外审批通过 2 次 × 500
	if sum.TotalRevenue != 1000 {
		t.Errorf("期望收入 1000，实际=%v", sum.TotalRevenue)
	}

	// DeviceStats 仅含有审批通过预约的设备
	if len(report.ReportData.DeviceStats) != 1 {
		t.Fatalf("期望 1 条设备统计，实际=%d", len(report.ReportData.DeviceStats))
	}
	ds := report.ReportData.DeviceStats[0]
	if ds.DeviceCode != "DEV-001" || ds.BookingCount != 3 || ds.Revenue != 1000 {
		t.Errorf("设备统计不正确: %+v", ds)
	}

	// DeviceUsage 覆盖全部设备，含零预约设备
	if len(report.ReportData.DeviceUsage) != 2 {
		t.Fatalf("期望 2 条使用率统计，实际=%d", len(report.ReportData.DeviceUsage))
	}
	u1 := report.ReportData.DeviceUsage[0]
	if u1.UsageHours != 6 {
		t.Errorf("期望使用时长 6，实际=%d", u1.UsageHours)
	}
	// 6 / (7*8) * 100 = 10.714... → 10.71
	if u1.UsageRate != 10.71 {
		t.Errorf("期望使用率 10.71，实际=%v", u1.UsageRate)
	}
	u2 := report.ReportData.DeviceUsage[1]
	if u2.DeviceCode != "DEV-002" || u2.BookingCount != 0 || u2.UsageRate != 0 {
		t.Errorf("零预约设备统计不正确: %+v", u2)
	}

	// 用户类型统计只计审批通过的预约，教师无通过预约不出现
	if len(report.ReportData.UserTypeStats) != 2 {
		t.Fatalf("期望 2 条用户类型统计，实际=%d", len(report.ReportData.UserTypeStats))
	}
	for _, ut := range report.ReportData.UserTypeStats {
		switch ut.UserType {
		case model.UserTypeStudent:
			if ut.BookingCount != 1 || ut.UserCount != 1 {
				t.Errorf("学生统计不正确: %+v", ut)
			}
		case model.UserTypeExternal:
			if ut.BookingCount != 2 || ut.UserCount != 2 {
				t.Errorf("校外统计不正确: %+v", ut)
			}
		default:
			t.Errorf("意外的用户类型: %s", ut.UserType)
		}
	}

	// 日期统计只计审批通过的预约，按日期升序
	dates := report.ReportData.DateStats
	if len(dates) != 2 {
		t.Fatalf("期望 2 条日期统计，实际=%d", len(dates))
	}
	if dates[0].BookingDate != "2026-09-08" || dates[0].BookingCount != 1 {
		t.Errorf("2026-09-08 应有 1 条通过预约，实际=%+v", dates[0])
	}
	if dates[1].BookingDate != "2026-09-09" || dates[1].BookingCount != 2 {
		t.Errorf("2026-09-09 应有 2 条通过预约，实际=%+v", dates[1])
	}
}

// 设备统计按审批通过预约数降序排列
func TestReportService_Generate_DeviceStatsOrder(t *testing.T) {
	env := setupTestReportService()
	ctx := context.Background()

	env.users.Create(ctx, &model.User{UserCode: "S1", Name: "学生甲", UserType: model.UserTypeStudent})
	env.devices.Create(ctx, &model.Device{DeviceCode: "DEV-001", Model: "扫描电镜", PriceExternal: 500})
	env.devices.Create(ctx, &model.Device{DeviceCode: "DEV-002", Model: "离心机", PriceExternal: 300})

	env.seedBooking(t, "user-S1", "dev-DEV-001", "2026-09-08", model.BookingManagerApproved)
	env.seedBooking(t, "user-S1", "dev-DEV-002", "2026-09-09", model.BookingManagerApproved)
	env.seedBooking(t, "user-S1", "dev-DEV-002", "2026-09-10", model.BookingManagerApproved)

	req := &dto.GenerateReportRequest{
		ReportType: model.ReportTypeCustom,
		StartDate:  "2026-09-07",
		EndDate:    "2026-09-13",
	}
	report, err := env.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}

	stats := report.ReportData.DeviceStats
	if len(stats) != 2 {
		t.Fatalf("期望 2 条设备统计，实际=%d", len(stats))
	}
	if stats[0].DeviceCode != "DEV-002" || stats[0].BookingCount != 2 {
		t.Errorf("通过预约最多的设备应排在首位，实际=%+v", stats[0])
	}
	if stats[1].DeviceCode != "DEV-001" || stats[1].BookingCount != 1 {
		t.Errorf("设备统计排序不正确: %+v", stats[1])
	}
}

// ── 幂等性测试 ──

func TestReportService_Generate_PeriodicIdempotent(t *testing.T) {
	env := setupTestReportService()
	ctx := context.Background()

	req := &dto.GenerateReportRequest{ReportType: model.ReportTypeWeek, Date: "2026-08-26"}
	first, err := env.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatalf("首次生成应成功: %v", err)
	}
	second, err := env.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatalf("重复生成应成功: %v", err)
	}
	if first.ReportID != second.ReportID {
		t.Errorf("周期性报表重复生成应返回既有报表，期望 %s，实际=%s", first.ReportID, second.ReportID)
	}
	if len(env.reports.reports) != 1 {
		t.Errorf("仓库中应只有 1 份报表，实际=%d", len(env.reports.reports))
	}

	// 同一周内不同日期也应命中同一报表
	req2 := &dto.GenerateReportRequest{ReportType: model.ReportTypeWeek, Date: "2026-08-28"}
	third, err := env.svc.Generate(ctx, req2, nil)
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}
	if third.ReportID != first.ReportID {
		t.Errorf("同一周不同基准日应命中同一报表")
	}
}

func TestReportService_Generate_CustomNotIdempotent(t *testing.T) {
	env := setupTestReportService()
	ctx := context.Background()

	req := &dto.GenerateReportRequest{
		ReportType: model.ReportTypeCustom,
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-10",
	}
	first, _ := env.svc.Generate(ctx, req, nil)
	second, err := env.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatalf("custom 重复生成应成功: %v", err)
	}
	if first.ReportID == second.ReportID {
		t.Error("custom 报表每次都应新生成")
	}
}

// ── 参数校验测试 ──

func TestReportService_Generate_CustomInvalidRange(t *testing.T) {
	env := setupTestReportService()

	req := &dto.GenerateReportRequest{
		ReportType: model.ReportTypeCustom,
		StartDate:  "2026-09-10",
		EndDate:    "2026-09-01",
	}
	_, err := env.svc.Generate(context.Background(), req, nil)
	if !errors.Is(err, ErrReportRangeInvalid) {
		t.Errorf("开始晚于结束应返回 ErrReportRangeInvalid，实际: %v", err)
	}

	req = &dto.GenerateReportRequest{ReportType: model.ReportTypeCustom, StartDate: "2026-09-01"}
	_, err = env.svc.Generate(context.Background(), req, nil)
	if !errors.Is(err, ErrReportRangeInvalid) {
		t.Errorf("缺少结束日期应返回 ErrReportRangeInvalid，实际: %v", err)
	}
}

// ── 清理测试 ──

func TestReportService_Cleanup(t *testing.T) {
	env := setupTestReportService()
	ctx := context.Background()

	old := &model.Report{ReportType: model.ReportTypeWeek, ReportName: "旧报表", GeneratedAt: time.Now().AddDate(0, 0, -40)}
	fresh := &model.Report{ReportType: model.ReportTypeWeek, ReportName: "新报表", GeneratedAt: time.Now().AddDate(0, 0, -5)}
	env.reports.Create(ctx, old)
	env.reports.Create(ctx, fresh)

	// dry-run 只统计
	count, err := env.svc.Cleanup(ctx, 30, true)
	if err != nil {
		t.Fatalf("dry-run 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("期望统计到 1 份过期报表，实际=%d", count)
	}
	if len(env.reports.reports) != 2 {
		t.Errorf("dry-run 不应删除报表，实际剩余=%d", len(env.reports.reports))
	}

	// 实际删除
	count, err = env.svc.Cleanup(ctx, 30, false)
	if err != nil {
		t.Fatalf("Cleanup 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("期望删除 1 份，实际=%d", count)
	}
	if _, err := env.reports.GetByID(ctx, old.ReportID); err == nil {
		t.Error("过期报表应已被删除")
	}
	if _, err := env.reports.GetByID(ctx, fresh.ReportID); err != nil {
		t.Error("未过期报表不应被删除")
	}
}
