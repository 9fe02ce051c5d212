package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

type ComplianceReport struct {
	Month      string                    `json:"month"`
	Conflicts  *compliance.ConflictState `json:"conflicts"`
	Violations []compliance.Violation    `json:"violations"`
	Cached     bool                      `json:"cached"`
}

func toShiftValues(shifts []*domain.Shift) []domain.Shift {
	values := make([]domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		values = append(values, *s)
	}
	return values
}

func toEmployeeValues(employees []*domain.Employee) []domain.Employee {
	values := make([]domain.Employee, 0, len(employees))
	for _, e := range employees {
		values = append(values, *e)
	}
	return values
}

func (h *Handler) redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

// dropReportCache 清除报告缓存，不传 months 时清除该地点所有月份，失败只记录日志
func (h *Handler) dropReportCache(r *http.Request, locationID int64, months ...time.Time) {
	if h.reportCache == nil {
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	var err error
	if len(months) == 0 {
		err = h.reportCache.InvalidateLocation(ctx, locationID)
	} else {
		err = h.reportCache.Invalidate(ctx, locationID, months...)
	}
	if err != nil {
		slog.Warn("清除合规报告缓存失败", "request_id", requestIDFrom(r), "location_id", locationID, "error", err)
	}
}

// buildReport 计算某个地点某个月的合规报告，优先使用缓存
func (h *Handler) buildReport(r *http.Request, location *domain.Location, month time.Time) (*ComplianceReport, []domain.Employee, error) {
	employees, err := h.repository.GetEmployeesByLocation(location.ID)
	if err != nil {
		return nil, nil, err
	}
	employeeValues := toEmployeeValues(employees)

	report := &ComplianceReport{
		Month: month.Format("2006-01"),
	}

	if h.reportCache != nil {
		ctx, cancel := h.redisContext()
		state, hit, err := h.reportCache.Get(ctx, location.ID, month)
		cancel()
		if err != nil {
			slog.Warn("读取合规报告缓存失败", "request_id", requestIDFrom(r), "location_id", location.ID, "error", err)
		}
		if hit {
			report.Conflicts = state
			report.Violations = state.Violations(employeeValues)
			report.Cached = true
			return report, employeeValues, nil
		}
	}

	shifts, err := h.repository.GetShiftsByLocationAndMonth(location.ID, month)
	if err != nil {
		return nil, nil, err
	}

	state := h.detector.Evaluate(toShiftValues(shifts), employeeValues, month)
	report.Conflicts = state
	report.Violations = state.Violations(employeeValues)

	if h.reportCache != nil {
		ctx, cancel := h.redisContext()
		if err := h.reportCache.Set(ctx, location.ID, month, state); err != nil {
			slog.Warn("写入合规报告缓存失败", "request_id", requestIDFrom(r), "location_id", location.ID, "error", err)
		}
		cancel()
	}

	return report, employeeValues, nil
}

func (h *Handler) GetComplianceReport(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	month, err := utils.ValidateMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	report, _, err := h.buildReport(r, location, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取合规报告成功", report)
}

func (h *Handler) publishMail(msg *domain.MailMessage) error {
	if h.mailChannel == nil {
		return fmt.Errorf("邮件队列不可用")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(ctx, "", h.config.RabbitMQ.Queue, true, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// NotifyCompliance 把合规报告发给地点负责人，并提醒每个存在违规的员工
func (h *Handler) NotifyCompliance(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	month, err := utils.ValidateMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	report, employees, err := h.buildReport(r, location, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if len(report.Violations) == 0 {
		h.successResponse(w, r, "本月排班没有违规，无需发送通知", report)
		return
	}

	failed, err := h.sendComplianceMails(r, location, report, employees)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if failed > 0 {
		h.successResponse(w, r, fmt.Sprintf("已发送合规通知，其中 %d 名员工的提醒发送失败", failed), report)
		return
	}

	h.successResponse(w, r, "已发送合规通知", report)
}

// sendComplianceMails 先逐个提醒员工，再把报告发给地点负责人
//
// 员工提醒失败只记录日志并返回失败数量，只有负责人的报告发送失败时才返回错误，
// 这样重试时负责人不会收到重复的报告。
func (h *Handler) sendComplianceMails(r *http.Request, location *domain.Location, report *ComplianceReport, employees []domain.Employee) (int, error) {
	items := make([]domain.ComplianceMailItem, 0, len(report.Violations))
	details := make(map[int64][]string)
	for _, v := range report.Violations {
		items = append(items, domain.ComplianceMailItem{
			EmployeeName: v.EmployeeName,
			Description:  v.Message,
		})
		details[v.EmployeeID] = append(details[v.EmployeeID], v.Message)
	}

	// 按员工列表的顺序发送，没有邮箱的员工跳过
	failed := 0
	for _, e := range employees {
		if len(details[e.ID]) == 0 || e.Email == "" {
			continue
		}
		if err := h.publish(&domain.MailMessage{
			Type: domain.MailTypeRestWarning,
			To:   e.Email,
			Data: domain.RestWarningMailData{
				FullName: e.FullName,
				Month:    report.Month,
				Details:  details[e.ID],
			},
		}); err != nil {
			slog.Warn("员工休息提醒发送失败", "request_id", requestIDFrom(r), "employee_id", e.ID, "error", err)
			failed++
		}
	}

	if err := h.publish(&domain.MailMessage{
		Type: domain.MailTypeComplianceReport,
		To:   location.ManagerEmail,
		Data: domain.ComplianceReportMailData{
			LocationName: location.Name,
			Month:        report.Month,
			Items:        items,
		},
	}); err != nil {
		return failed, err
	}

	return failed, nil
}

// CheckTimeRange 只检查单个时间段是否超过 12 小时，不需要查询数据库
//
// 请求中的原始字符串使用单独的检测器，不进入共享的解析缓存。
func (h *Handler) CheckTimeRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeRange string `json:"timeRange" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	results := make([]compliance.ValidationResult, 0, 1)
	if result := compliance.NewDetector().CheckExceeds12h(req.TimeRange); result != nil {
		results = append(results, *result)
	}

	h.successResponse(w, r, "检查完成", results)
}
