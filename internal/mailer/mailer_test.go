package mailer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		mailType    string
		data        any
		wantSubject string
		wantBody    []string
	}{
		{
			name:     "合规报告",
			mailType: domain.MailTypeComplianceReport,
			data: domain.ComplianceReportMailData{
				LocationName: "东校区",
				Month:        "2024-03",
				Items: []domain.ComplianceMailItem{
					{EmployeeName: "张三", Description: "2024-03-05 的班次超过 12 小时"},
				},
			},
			wantSubject: "东校区 2024-03 合规报告",
			wantBody:    []string{"张三", "2024-03-05 的班次超过 12 小时", "1 处"},
		},
		{
			name:     "休息提醒",
			mailType: domain.MailTypeRestWarning,
			data: domain.RestWarningMailData{
				FullName: "李四",
				Month:    "2024-03",
				Details:  []string{"第 2 周没有连续 35 小时的休息"},
			},
			wantSubject: "2024-03 休息时间提醒",
			wantBody:    []string{"李四", "第 2 周没有连续 35 小时的休息"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, err := Render(tt.mailType, mustMarshal(t, tt.data))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(subject, tt.wantSubject) {
				t.Errorf("subject = %q, want it to contain %q", subject, tt.wantSubject)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("body does not contain %q", want)
				}
			}
		})
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	data := mustMarshal(t, domain.RestWarningMailData{FullName: "<script>", Month: "2024-03"})
	_, body, err := Render(domain.MailTypeRestWarning, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("expected full name to be escaped")
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, _, err := Render("reset_password", json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for unknown mail type")
	}
}

func TestBuild(t *testing.T) {
	body := mustMarshal(t, domain.MailMessage{
		Type: domain.MailTypeRestWarning,
		To:   "lisi@example.com",
		Data: domain.RestWarningMailData{FullName: "李四", Month: "2024-03"},
	})

	m, err := Build("noreply@example.com", body)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m == nil {
		t.Fatal("Build() returned nil message")
	}

	if _, err := Build("noreply@example.com", []byte("not json")); err == nil {
		t.Error("expected error for malformed message")
	}

	bad := mustMarshal(t, domain.MailMessage{Type: domain.MailTypeRestWarning, To: "not-an-address", Data: domain.RestWarningMailData{}})
	if _, err := Build("noreply@example.com", bad); err == nil {
		t.Error("expected error for invalid recipient")
	}
}
