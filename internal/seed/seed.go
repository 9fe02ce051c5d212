package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

// 必须存在的列，"姓名" 和 "备注" 是可选列
var requiredHeaders = []string{"工号", "日期", "时间段"}

type Record struct {
	Line      int
	Code      string
	FullName  string
	Date      string
	TimeRange string
	Note      string
}

// ParseShiftCSV 读取排班 CSV，时间段中的全角冒号会被替换成半角冒号
func ParseShiftCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(headers[i]), "\ufeff")
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("没有找到列 %s", h)
		}
	}

	// 读取数据
	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		values := make(map[string]string, len(headers))
		for i, value := range row {
			if i < len(headers) {
				values[headers[i]] = strings.TrimSpace(value)
			}
		}

		record := Record{
			Line:      line,
			Code:      values["工号"],
			FullName:  values["姓名"],
			Date:      values["日期"],
			TimeRange: strings.ReplaceAll(values["时间段"], "：", ":"),
			Note:      values["备注"],
		}

		if record.Code == "" {
			return nil, fmt.Errorf("第 %d 行没有工号", line)
		}
		if _, err := time.Parse(time.DateOnly, record.Date); err != nil {
			return nil, fmt.Errorf("第 %d 行的日期 %s 格式错误", line, record.Date)
		}
		if err := utils.ValidateTimeRange(record.TimeRange); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		records = append(records, record)
	}

	return records, nil
}

// ImportShifts 把 CSV 中的班次导入到指定地点，工号不存在时会按照 "姓名" 列新建员工
func ImportShifts(r *repository.Repository, locationID int64, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	records, err := ParseShiftCSV(file)
	if err != nil {
		slog.Error("解析文件失败", "error", err)
		return
	}

	if _, err := r.GetLocationByID(locationID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			slog.Error("指定的地点不存在", "location_id", locationID)
		default:
			slog.Error("获取地点失败", "error", err)
		}
		return
	}

	employees := make(map[string]*domain.Employee)
	shifts := make([]*domain.Shift, 0, len(records))

	for _, record := range records {
		employee, ok := employees[record.Code]
		if !ok {
			employee, err = r.GetEmployeeByCode(locationID, record.Code)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					// 表示该员工不在数据库中，需要新建并插入
					if record.FullName == "" {
						slog.Error("员工不存在且没有提供姓名", "line", record.Line, "code", record.Code)
						continue
					}
					employee = &domain.Employee{
						LocationID: locationID,
						FullName:   record.FullName,
						Code:       record.Code,
					}
					if err := r.CreateEmployee(employee); err != nil {
						slog.Error("插入员工失败", "line", record.Line, "error", err)
						continue
					}
				default:
					slog.Error("获取员工失败", "line", record.Line, "error", err)
					continue
				}
			}
			employees[record.Code] = employee
		}

		shifts = append(shifts, &domain.Shift{
			EmployeeID: employee.ID,
			LocationID: locationID,
			Date:       record.Date,
			TimeRange:  record.TimeRange,
			Note:       record.Note,
		})
	}

	if err := r.CreateShifts(shifts); err != nil {
		slog.Error("插入班次失败", "error", err)
		return
	}

	slog.Info("导入班次完成", "count", len(shifts), "employees", len(employees))
}
