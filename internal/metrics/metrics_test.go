package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric はレジストリから指定名・ラベルのメトリクスを探す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DuplicateRegistration_Panics は同一レジストリへの二重登録でpanicすることを検証する。
func TestNewCollector_DuplicateRegistration_Panics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestRecordHTTPRequest_CountsByLabels はHTTPリクエストがラベル別に集計されることを検証する。
func TestRecordHTTPRequest_CountsByLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/posts", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/posts", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("DELETE", "/posts/{postId}", 403, 5*time.Millisecond)

	m := findMetric(t, reg, "newsboard_http_requests_total", map[string]string{
		"method": "GET", "route": "/posts", "status": "200",
	})
	if m == nil {
		t.Fatal("GET /posts 200 metric not found")
	}
	if v := m.GetCounter().GetValue(); v != 2 {
		t.Errorf("GET /posts 200 = %v, want 2", v)
	}

	m = findMetric(t, reg, "newsboard_http_requests_total", map[string]string{
		"method": "DELETE", "route": "/posts/{postId}", "status": "403",
	})
	if m == nil || m.GetCounter().GetValue() != 1 {
		t.Error("DELETE /posts/{postId} 403 should be counted once")
	}

	h := findMetric(t, reg, "newsboard_http_request_duration_seconds", map[string]string{
		"method": "GET", "route": "/posts",
	})
	if h == nil {
		t.Fatal("duration histogram not found")
	}
	if n := h.GetHistogram().GetSampleCount(); n != 2 {
		t.Errorf("sample count = %d, want 2", n)
	}
}

// TestRecordSignupAndSignin はユーザー登録とサインイン結果が記録されることを検証する。
func TestRecordSignupAndSignin(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup()
	c.RecordSignin(true)
	c.RecordSignin(false)
	c.RecordSignin(false)

	if m := findMetric(t, reg, "newsboard_signups_total", nil); m == nil || m.GetCounter().GetValue() != 1 {
		t.Error("newsboard_signups_total should be 1")
	}
	if m := findMetric(t, reg, "newsboard_signins_total", map[string]string{"result": "success"}); m == nil || m.GetCounter().GetValue() != 1 {
		t.Error("signins success should be 1")
	}
	if m := findMetric(t, reg, "newsboard_signins_total", map[string]string{"result": "failure"}); m == nil || m.GetCounter().GetValue() != 2 {
		t.Error("signins failure should be 2")
	}
}

// TestRecordPostOperation は投稿操作が操作別に記録されることを検証する。
func TestRecordPostOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPostOperation("create")
	c.RecordPostOperation("create")
	c.RecordPostOperation("delete")

	if m := findMetric(t, reg, "newsboard_post_operations_total", map[string]string{"op": "create"}); m == nil || m.GetCounter().GetValue() != 2 {
		t.Error("create should be 2")
	}
	if m := findMetric(t, reg, "newsboard_post_operations_total", map[string]string{"op": "delete"}); m == nil || m.GetCounter().GetValue() != 1 {
		t.Error("delete should be 1")
	}
}
