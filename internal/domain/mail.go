package domain

const (
	MailTypeComplianceReport = "compliance_report"
	MailTypeRestWarning      = "rest_warning"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ComplianceMailItem struct {
	EmployeeName string `json:"employeeName"`
	Description  string `json:"description"`
}

// 发给地点负责人的月度合规报告
type ComplianceReportMailData struct {
	LocationName string               `json:"locationName"`
	Month        string               `json:"month"`
	Items        []ComplianceMailItem `json:"items"`
}

// 发给员工本人的休息时间提醒
type RestWarningMailData struct {
	FullName string   `json:"fullName"`
	Month    string   `json:"month"`
	Details  []string `json:"details"`
}
