package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

// RosterFile 离线检查用的排班文件，例如：
//
//	month = "2024-03"
//
//	[[employees]]
//	id = 1
//	name = "张三"
//
//	[[shifts]]
//	employee = 1
//	date = "2024-03-01"
//	time = "9:00-18:00"
type RosterFile struct {
	Month     string         `toml:"month"`
	Employees []EmployeeLine `toml:"employees"`
	Shifts    []ShiftLine    `toml:"shifts"`
}

type EmployeeLine struct {
	ID   int64  `toml:"id"`
	Name string `toml:"name"`
}

type ShiftLine struct {
	Employee int64  `toml:"employee"`
	Date     string `toml:"date"`
	Time     string `toml:"time"`
}

// Roster 是 RosterFile 转换成领域对象之后的结果
type Roster struct {
	Month     time.Time
	Employees []domain.Employee
	Shifts    []domain.Shift
}

func DecodeRoster(r io.Reader) (*Roster, error) {
	file := &RosterFile{}
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(file); err != nil {
		return nil, fmt.Errorf("解析排班文件失败: %w", err)
	}

	month, err := utils.ValidateMonth(file.Month)
	if err != nil {
		return nil, err
	}

	roster := &Roster{
		Month:     month,
		Employees: make([]domain.Employee, 0, len(file.Employees)),
		Shifts:    make([]domain.Shift, 0, len(file.Shifts)),
	}

	seen := make(map[int64]bool, len(file.Employees))
	for _, e := range file.Employees {
		if seen[e.ID] {
			return nil, fmt.Errorf("员工 %d 重复出现", e.ID)
		}
		seen[e.ID] = true
		roster.Employees = append(roster.Employees, domain.Employee{ID: e.ID, FullName: e.Name, IsActive: true})
	}

	for i, s := range file.Shifts {
		roster.Shifts = append(roster.Shifts, domain.Shift{
			ID:         int64(i + 1),
			EmployeeID: s.Employee,
			Date:       s.Date,
			TimeRange:  s.Time,
		})
	}

	return roster, nil
}

func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeRoster(f)
}

// FormatProblems 严格校验每个班次的格式，合规检查会直接忽略这些班次
func (r *Roster) FormatProblems() []string {
	problems := make([]string, 0)
	for i, s := range r.Shifts {
		if err := utils.ValidateShiftInMonth(&s, r.Month); err != nil {
			problems = append(problems, fmt.Sprintf("第 %d 个班次：%s", i+1, err.Error()))
			continue
		}
		if err := utils.ValidateTimeRange(s.TimeRange); err != nil {
			problems = append(problems, fmt.Sprintf("第 %d 个班次：%s", i+1, err.Error()))
		}
	}

	if err := utils.ValidateNoDoubleBooking(r.Shifts); err != nil {
		problems = append(problems, err.Error())
	}
	if err := utils.ValidateEmployeesAtLocation(r.Shifts, r.Employees); err != nil {
		problems = append(problems, err.Error())
	}

	return problems
}
