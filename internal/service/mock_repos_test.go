package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.UserCode
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByCode(_ context.Context, userCode string) (*model.User, error) {
	for _, u := range m.users {
		if u.UserCode == userCode {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, userType, keyword string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if userType != "" && u.UserType != userType {
			continue
		}
		if keyword != "" && !strings.Contains(u.UserCode, keyword) && !strings.Contains(u.Name, keyword) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserCode < result[j].UserCode })
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListStudentsByAdvisor(_ context.Context, advisorName string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.UserType == model.UserTypeStudent && u.Advisor == advisorName {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserCode < result[j].UserCode })
	return result, nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[string]*model.Device
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[string]*model.Device)}
}

func (m *mockDeviceRepo) Create(_ context.Context, device *model.Device) error {
	if device.DeviceID == "" {
		device.DeviceID = "dev-" + device.DeviceCode
	}
	m.devices[device.DeviceID] = device
	return nil
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*model.Device, error) {
	if d, ok := m.devices[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) GetByCode(_ context.Context, deviceCode string) (*model.Device, error) {
	for _, d := range m.devices {
		if d.DeviceCode == deviceCode {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) Update(_ context.Context, device *model.Device) error {
	m.devices[device.DeviceID] = device
	return nil
}

func (m *mockDeviceRepo) UpdateStatus(_ context.Context, id, status string) error {
	d, ok := m.devices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	return nil
}

func (m *mockDeviceRepo) Delete(_ context.Context, id string) error {
	delete(m.devices, id)
	return nil
}

func (m *mockDeviceRepo) List(_ context.Context, keyword, status string, offset, limit int) ([]model.Device, int64, error) {
	match := func(d *model.Device) bool {
		if status != "" && d.Status != status {
			return false
		}
		if keyword == "" {
			return true
		}
		for _, field := range []string{d.DeviceCode, d.Model, d.Manufacturer, d.Purpose} {
			if strings.Contains(strings.ToLower(field), strings.ToLower(keyword)) {
				return true
			}
		}
		return false
	}
	var result []model.Device
	for _, d := range m.devices {
		if match(d) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DeviceCode < result[j].DeviceCode })
	return result, int64(len(result)), nil
}

func (m *mockDeviceRepo) ListAll(_ context.Context) ([]model.Device, error) {
	var result []model.Device
	for _, d := range m.devices {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DeviceCode < result[j].DeviceCode })
	return result, nil
}

// ── Mock BookingRepository ──

// mockBookingRepo 持有 user/device mock 的引用以便填充关联字段
type mockBookingRepo struct {
	bookings map[string]*model.Booking
	users    *mockUserRepo
	devices  *mockDeviceRepo
	seq      int
}

func newMockBookingRepo(users *mockUserRepo, devices *mockDeviceRepo) *mockBookingRepo {
	return &mockBookingRepo{
		bookings: make(map[string]*model.Booking),
		users:    users,
		devices:  devices,
	}
}

func (m *mockBookingRepo) attach(b *model.Booking) *model.Booking {
	clone := *b
	if u, ok := m.users.users[b.ApplicantID]; ok {
		clone.Applicant = u
	}
	if d, ok := m.devices.devices[b.DeviceID]; ok {
		clone.Device = d
	}
	return &clone
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	if booking.BookingID == "" {
		m.seq++
		booking.BookingID = fmt.Sprintf("bk-%03d", m.seq)
	}
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return m.attach(b), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return m.attach(b), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id, status string) error {
	b, ok := m.bookings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

func (m *mockBookingRepo) ListByApplicant(_ context.Context, applicantID, status string, offset, limit int) ([]model.Booking, int64, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.ApplicantID != applicantID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		result = append(result, *m.attach(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BookingID < result[j].BookingID })
	return result, int64(len(result)), nil
}

func (m *mockBookingRepo) ListByStatus(_ context.Context, status, applicantUserType string, offset, limit int) ([]model.Booking, int64, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.Status != status {
			continue
		}
		attached := m.attach(b)
		if applicantUserType != "" {
			if attached.Applicant == nil || attached.Applicant.UserType != applicantUserType {
				continue
			}
		}
		result = append(result, *attached)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BookingID < result[j].BookingID })
	return result, int64(len(result)), nil
}

func (m *mockBookingRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.BookingDate.Before(start) || b.BookingDate.After(end) {
			continue
		}
		result = append(result, *m.attach(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BookingDate.Before(result[j].BookingDate) })
	return result, nil
}

// ── Mock ApprovalRecordRepository ──

type mockApprovalRecordRepo struct {
	records []*model.ApprovalRecord
	seq     int
}

func newMockApprovalRecordRepo() *mockApprovalRecordRepo {
	return &mockApprovalRecordRepo{}
}

func (m *mockApprovalRecordRepo) Create(_ context.Context, record *model.ApprovalRecord) error {
	if record.RecordID == "" {
		m.seq++
		record.RecordID = fmt.Sprintf("rec-%03d", m.seq)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockApprovalRecordRepo) ListByBooking(_ context.Context, bookingID string) ([]model.ApprovalRecord, error) {
	var result []model.ApprovalRecord
	for _, r := range m.records {
		if r.BookingID == bookingID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock LedgerRepository ──

type mockLedgerRepo struct {
	entries []*model.DeviceLedger
	seq     int
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{}
}

func (m *mockLedgerRepo) Create(_ context.Context, entry *model.DeviceLedger) error {
	if entry.LedgerID == "" {
		m.seq++
		entry.LedgerID = fmt.Sprintf("led-%03d", m.seq)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLedgerRepo) GetByID(_ context.Context, id string) (*model.DeviceLedger, error) {
	for _, e := range m.entries {
		if e.LedgerID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) List(_ context.Context, deviceID, operationType string, offset, limit int) ([]model.DeviceLedger, int64, error) {
	var result []model.DeviceLedger
	for _, e := range m.entries {
		if deviceID != "" && (e.DeviceID == nil || *e.DeviceID != deviceID) {
			continue
		}
		if operationType != "" && e.OperationType != operationType {
			continue
		}
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

func (m *mockLedgerRepo) GetOpenBorrow(_ context.Context, deviceID string) (*model.DeviceLedger, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.DeviceID != nil && *e.DeviceID == deviceID &&
			e.OperationType == model.LedgerOpBorrow && e.ActualReturnDate == nil {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) CloseBorrow(_ context.Context, ledgerID string, returnedAt time.Time) error {
	for _, e := range m.entries {
		if e.LedgerID == ledgerID {
			e.ActualReturnDate = &returnedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	reports map[string]*model.Report
	seq     int
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]*model.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	if report.ReportID == "" {
		m.seq++
		report.ReportID = fmt.Sprintf("rpt-%03d", m.seq)
	}
	m.reports[report.ReportID] = report
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) GetByWindow(_ context.Context, reportType string, start, end time.Time) (*model.Report, error) {
	for _, r := range m.reports {
		if r.ReportType == reportType && r.StartDate.Equal(start) && r.EndDate.Equal(end) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) List(_ context.Context, reportType string, limit int) ([]model.Report, error) {
	var result []model.Report
	for _, r := range m.reports {
		if reportType != "" && r.ReportType != reportType {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GeneratedAt.After(result[j].GeneratedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockReportRepo) Delete(_ context.Context, id string) error {
	delete(m.reports, id)
	return nil
}

func (m *mockReportRepo) DeleteGeneratedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, r := range m.reports {
		if r.GeneratedAt.Before(cutoff) {
			delete(m.reports, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockReportRepo) ListGeneratedBefore(_ context.Context, cutoff time.Time) ([]model.Report, error) {
	var result []model.Report
	for _, r := range m.reports {
		if r.GeneratedAt.Before(cutoff) {
			result = append(result, *r)
		}
	}
	return result, nil
}
