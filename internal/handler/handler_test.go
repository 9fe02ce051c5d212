package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.Expiration = 3600

	h, err := NewHandler(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	h.RegisterRoutes()
	return h
}

func tokenCookie(t *testing.T, h *Handler, role domain.Role) *http.Cookie {
	t.Helper()

	now := time.Now()
	ss, err := h.signToken(string(role), "1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}
	return &http.Cookie{Name: tokenCookieName, Value: ss}
}

func doRequest(h *Handler, method, target string, body any, cookie *http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		cookie  *http.Cookie
		wantMsg string
	}{
		{"未登录", nil, "用户未登录"},
		{"令牌无效", &http.Cookie{Name: tokenCookieName, Value: "not-a-jwt"}, "无效的令牌"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/time-ranges/check", map[string]string{"timeRange": "9:00-17:00"}, tt.cookie, nil)
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Fatal("expected failure")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	h := newTestHandler(t)

	other := newTestHandler(t)
	other.config.JWT.Secret = "another-secret"
	cookie := tokenCookie(t, other, domain.RolePlanner)

	resp := decodeResponse(t, doRequest(h, http.MethodPost, "/time-ranges/check", map[string]string{"timeRange": "9:00-17:00"}, cookie, nil))
	if resp.Success || resp.Message != "无效的令牌" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCheckTimeRange(t *testing.T) {
	h := newTestHandler(t)
	cookie := tokenCookie(t, h, domain.RolePlanner)

	tests := []struct {
		name      string
		timeRange string
		wantKinds []string
	}{
		{"正常班次", "9:00-17:00", nil},
		{"恰好 12 小时", "8:00-20:00", nil},
		{"超过 12 小时", "8:00-21:00", []string{"exceeds12h"}},
		{"无法解析", "9:00-17:00 ", nil},
		{"跨夜", "22:00-6:00", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/time-ranges/check", map[string]string{"timeRange": tt.timeRange}, cookie, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			resp := decodeResponse(t, rec)
			if !resp.Success {
				t.Fatalf("expected success, got %q", resp.Message)
			}

			results, ok := resp.Data.([]any)
			if !ok {
				t.Fatalf("data is %T, want []any", resp.Data)
			}
			if len(results) != len(tt.wantKinds) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantKinds))
			}
			for i, kind := range tt.wantKinds {
				got := results[i].(map[string]any)["kind"]
				if got != kind {
					t.Errorf("result %d kind = %v, want %s", i, got, kind)
				}
			}
		})
	}
}

func TestCheckTimeRangeValidation(t *testing.T) {
	h := newTestHandler(t)
	cookie := tokenCookie(t, h, domain.RolePlanner)

	resp := decodeResponse(t, doRequest(h, http.MethodPost, "/time-ranges/check", map[string]string{}, cookie, nil))
	if resp.Success {
		t.Fatal("expected validation failure")
	}
	if resp.Message == "" {
		t.Error("expected translated validation message")
	}
}

func TestRequiredRole(t *testing.T) {
	h := newTestHandler(t)
	cookie := tokenCookie(t, h, domain.RolePlanner)

	body := map[string]string{"name": "东校区", "managerEmail": "manager@example.com"}
	resp := decodeResponse(t, doRequest(h, http.MethodPost, "/locations", body, cookie, nil))
	if resp.Success || resp.Message != "权限不足" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestLoaderRejectsInvalidID(t *testing.T) {
	h := newTestHandler(t)
	cookie := tokenCookie(t, h, domain.RoleAdmin)

	tests := []struct {
		target  string
		wantMsg string
	}{
		{"/locations/abc", "地点ID无效"},
		{"/locations/0/shifts?month=2024-03", "地点ID无效"},
		{"/employees/-1", "员工ID无效"},
		{"/shifts/x", "班次ID无效"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp := decodeResponse(t, doRequest(h, http.MethodGet, tt.target, nil, cookie, nil))
			if resp.Success || resp.Message != tt.wantMsg {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t)

	t.Run("沿用请求头", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/auth/logout", nil, nil, map[string]string{"X-Request-ID": "abc-123"})
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q, want abc-123", got)
		}
	})

	t.Run("自动生成", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/auth/logout", nil, nil, nil)
		if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
			t.Errorf("X-Request-ID = %q, want a uuid", got)
		}
	})

	t.Run("过长时重新生成", func(t *testing.T) {
		long := strings.Repeat("a", requestIDMaxLen+1)
		rec := doRequest(h, http.MethodPost, "/auth/logout", nil, nil, map[string]string{"X-Request-ID": long})
		if got := rec.Header().Get("X-Request-ID"); got == long || got == "" {
			t.Errorf("X-Request-ID = %q, want a regenerated id", got)
		}
	})
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/auth/logout", nil, nil, nil)
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != tokenCookieName {
		t.Fatalf("unexpected cookies %v", cookies)
	}
	if cookies[0].Value != "" || !cookies[0].Expires.Before(time.Now()) {
		t.Errorf("expected an expired empty cookie, got %+v", cookies[0])
	}
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"缺少密码", `{"username":"admin"}`},
		{"不是 JSON", `username=admin`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Mux.ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("expected failure")
			}
		})
	}
}

func TestMonthOf(t *testing.T) {
	month, err := monthOf("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !month.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month = %v, want 2024-02-01", month)
	}

	if _, err := monthOf("2024-02-30"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestEnsureSameLocation(t *testing.T) {
	employee := &domain.Employee{ID: 7, LocationID: 1, FullName: "张三"}

	tests := []struct {
		name       string
		locationID int64
		wantErr    bool
	}{
		{"同一地点", 1, false},
		{"其他地点", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ensureSameLocation(employee, tt.locationID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "不属于") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}
