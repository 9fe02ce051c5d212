package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleRoster = `
month = "2024-03"

[[employees]]
id = 1
name = "张三"

[[employees]]
id = 2
name = "李四"

[[shifts]]
employee = 1
date = "2024-03-01"
time = "8:00-21:00"

[[shifts]]
employee = 2
date = "2024-03-04"
time = "12:00-22:00"

[[shifts]]
employee = 2
date = "2024-03-05"
time = "6:00-14:00"
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	app := NewApp()
	app.SetOutput(out)
	app.SetArgs(append([]string{"--no-color"}, args...))
	err := app.Execute()
	return out.String(), err
}

func TestDecodeRoster(t *testing.T) {
	roster, err := DecodeRoster(strings.NewReader(sampleRoster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if roster.Month.Format("2006-01") != "2024-03" {
		t.Errorf("expected month 2024-03, got %s", roster.Month.Format("2006-01"))
	}
	if len(roster.Employees) != 2 {
		t.Errorf("expected 2 employees, got %d", len(roster.Employees))
	}
	if len(roster.Shifts) != 3 {
		t.Fatalf("expected 3 shifts, got %d", len(roster.Shifts))
	}
	if roster.Shifts[1].EmployeeID != 2 || roster.Shifts[1].TimeRange != "12:00-22:00" {
		t.Errorf("unexpected shift %+v", roster.Shifts[1])
	}
	if len(roster.FormatProblems()) != 0 {
		t.Errorf("expected no format problems, got %v", roster.FormatProblems())
	}
}

func TestDecodeRosterErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"未知字段", "month = \"2024-03\"\nfoo = 1\n"},
		{"月份格式错误", "month = \"2024/03\"\n"},
		{"缺少月份", "[[employees]]\nid = 1\nname = \"张三\"\n"},
		{"员工重复", "month = \"2024-03\"\n[[employees]]\nid = 1\n[[employees]]\nid = 1\n"},
		{"不是 TOML", "month = "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRoster(strings.NewReader(tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFormatProblems(t *testing.T) {
	content := `
month = "2024-03"

[[employees]]
id = 1

[[shifts]]
employee = 1
date = "2024-04-01"
time = "9:00-17:00"

[[shifts]]
employee = 1
date = "2024-03-02"
time = "22:00-6:00"

[[shifts]]
employee = 9
date = "2024-03-03"
time = "9:00-17:00"
`
	roster, err := DecodeRoster(strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	problems := roster.FormatProblems()
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(problems), problems)
	}
	if !strings.Contains(problems[0], "第 1 个班次") {
		t.Errorf("expected first problem about shift 1, got %s", problems[0])
	}
	if !strings.Contains(problems[1], "第 2 个班次") {
		t.Errorf("expected second problem about shift 2, got %s", problems[1])
	}
	if !strings.Contains(problems[2], "不属于") {
		t.Errorf("expected unknown employee problem, got %s", problems[2])
	}
}

func TestCheckCommand(t *testing.T) {
	path := writeRoster(t, sampleRoster)

	out, err := run(t, "check", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"2024-03 排班检查", "[超时] 张三", "[日休不足] 李四"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCheckCommandStrict(t *testing.T) {
	path := writeRoster(t, sampleRoster)

	_, err := run(t, "check", "--strict", path)
	if !errors.Is(err, ErrViolations) {
		t.Errorf("expected ErrViolations, got %v", err)
	}

	clean := writeRoster(t, "month = \"2024-03\"\n[[employees]]\nid = 1\n[[shifts]]\nemployee = 1\ndate = \"2024-03-01\"\ntime = \"9:00-17:00\"\n")
	out, err := run(t, "check", "--strict", clean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "没有发现违规") {
		t.Errorf("expected clean report, got:\n%s", out)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	path := writeRoster(t, sampleRoster)

	out, err := run(t, "check", "--json", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"1-2024-03-01"`) {
		t.Errorf("expected exceeding key in JSON output, got:\n%s", out)
	}
}

func TestCheckCommandMissingFile(t *testing.T) {
	if _, err := run(t, "check", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHoursCommand(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"9:00-17:00", "没有超过上限"},
		{"8:00-21:00", "超过了 12 小时的上限"},
		{"22:00-6:00", "无法解析"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			out, err := run(t, "hours", tt.arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, out)
			}
		})
	}
}
