package api

import (
	"context"
	"net/http"
	"time"

	apihttp "inventory-assistant/internal/common/http"
)

// Checker is a named readiness probe.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const readyCheckTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apihttp.WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Message: "Inventory assistant backend is running.",
	})
}

// handleReady returns 503 when any checker fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.checkers))
	healthy := true
	for _, c := range s.checkers {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = "fail: " + err.Error()
			healthy = false
			continue
		}
		checks[c.Name] = "ok"
	}

	resp := readyResponse{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !healthy {
		resp.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	apihttp.WriteJSON(w, status, resp)
}
