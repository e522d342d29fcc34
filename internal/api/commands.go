package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "inventory-assistant/internal/common/errors"
	apihttp "inventory-assistant/internal/common/http"
	"inventory-assistant/internal/common/validation"
	"inventory-assistant/internal/interpreter"
	"inventory-assistant/internal/models"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

type executeRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type recentResponse struct {
	Commands []models.CommandRecord `json:"commands"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := apihttp.ReadBody(r)
	if err != nil {
		writeEnvelope(w, interpreter.FailureEnvelope(apperrors.NewInvalidRequestError(err.Error())))
		return
	}

	result, err := s.validator.Validate(validation.ExecuteCommand, body)
	if err != nil {
		writeEnvelope(w, interpreter.FailureEnvelope(apperrors.NewInvalidRequestError(err.Error())))
		return
	}
	if !result.Valid {
		writeEnvelope(w, interpreter.FailureEnvelope(apperrors.NewValidationError(result.Errors[0].Field, result.FirstMessage())))
		return
	}

	var req executeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeEnvelope(w, interpreter.FailureEnvelope(apperrors.NewInvalidRequestError(err.Error())))
		return
	}

	writeEnvelope(w, s.interp.ExecuteFrom(r.Context(), req.Text, req.Source))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxRecentLimit)
		}
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeServerError(w, "recent_commands", err)
		return
	}
	if records == nil {
		records = []models.CommandRecord{}
	}
	apihttp.WriteJSON(w, http.StatusOK, recentResponse{Commands: records})
}

func writeEnvelope(w http.ResponseWriter, env *interpreter.Envelope) {
	apihttp.WriteJSON(w, env.Status, env)
}
