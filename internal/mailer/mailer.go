package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// envelope 和 domain.MailMessage 对应，data 留到确定类型之后再解析
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Render 根据邮件类型渲染主题和 HTML 正文
func Render(mailType string, data json.RawMessage) (string, string, error) {
	var (
		subject string
		name    string
		payload any
	)

	switch mailType {
	case domain.MailTypeComplianceReport:
		d := domain.ComplianceReportMailData{}
		if err := json.Unmarshal(data, &d); err != nil {
			return "", "", err
		}
		subject = fmt.Sprintf("排班系统 - %s %s 合规报告", d.LocationName, d.Month)
		name = "compliance_report.html"
		payload = d
	case domain.MailTypeRestWarning:
		d := domain.RestWarningMailData{}
		if err := json.Unmarshal(data, &d); err != nil {
			return "", "", err
		}
		subject = fmt.Sprintf("排班系统 - %s 休息时间提醒", d.Month)
		name = "rest_warning.html"
		payload = d
	default:
		return "", "", fmt.Errorf("不支持的邮件类型 %s", mailType)
	}

	buf := &bytes.Buffer{}
	if err := templates.ExecuteTemplate(buf, name, payload); err != nil {
		return "", "", err
	}

	return subject, buf.String(), nil
}

// Build 把队列中的消息转换成可以发送的邮件
func Build(from string, body []byte) (*mail.Msg, error) {
	env := envelope{}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	subject, html, err := Render(env.Type, env.Data)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(env.To); err != nil {
		return nil, err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, html)

	return m, nil
}
