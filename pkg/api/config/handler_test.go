package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creator_mind/pkg/core/agent"
)

func TestHandleConfigAndSwitch(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{ActiveProvider: "gemini"}, nil))

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	var got Response
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ActiveProvider != "gemini" || len(got.Available) != 5 {
		t.Errorf("config = %+v", got)
	}

	tests := []struct {
		body       string
		wantStatus int
		wantActive string
	}{
		{`{"provider":"deepseek"}`, http.StatusOK, "deepseek"},
		{`{"provider":"openai"}`, http.StatusBadRequest, "deepseek"},
		{`not json`, http.StatusBadRequest, "deepseek"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", strings.NewReader(tt.body)))
		if rec.Code != tt.wantStatus {
			t.Errorf("switch %s status = %d, want %d", tt.body, rec.Code, tt.wantStatus)
		}
		if active := h.AgentMgr.GetActiveProvider(); active != tt.wantActive {
			t.Errorf("after %s active = %s, want %s", tt.body, active, tt.wantActive)
		}
	}
}
