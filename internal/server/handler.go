// Package server exposes the engine over HTTP. The contract is thin: parse
// and shape-check the request, call the orchestrator, map the error taxonomy
// to status codes.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/common/validation"
	"checklist-engine/internal/engine/execution"
	"checklist-engine/internal/models"
)

const maxBodyBytes = 1 << 20

// Service is the engine surface the HTTP layer needs.
type Service interface {
	Execute(ctx context.Context, req *execution.Request) (*models.Execution, error)
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
}

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Register mounts the API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/executions", h.handleExecute)
	mux.HandleFunc("GET /api/v1/executions/{id}", h.handleExecutionByID)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

type executeRequest struct {
	TemplateID         string        `json:"templateId"`
	GroupID            string        `json:"groupId"`
	ExecutorUserID     string        `json:"executorUserId"`
	TargetType         string        `json:"targetType"`
	TargetID           string        `json:"targetId"`
	ExecutionTimestamp string        `json:"executionTimestamp"`
	Notes              string        `json:"notes"`
	Answers            []answerInput `json:"answers"`
}

type answerInput struct {
	QuestionID     string  `json:"questionId"`
	ApprovalStatus string  `json:"approvalStatus"`
	ApprovalValue  float64 `json:"approvalValue"`
	IsSkipped      bool    `json:"isSkipped"`
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, errors.NewRequestValidationFailedError("unreadable request body"))
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		h.writeError(w, errors.NewRequestValidationFailedError("request body is not valid JSON"))
		return
	}

	if result := validation.ValidateInput(raw, GetExecuteSchema()); !result.Valid {
		h.writeError(w, errors.NewRequestValidationFailedError(result.ErrorSummary()))
		return
	}

	var dto executeRequest
	if err := json.Unmarshal(body, &dto); err != nil {
		h.writeError(w, errors.NewRequestValidationFailedError(err.Error()))
		return
	}

	req, err := dto.toEngineRequest()
	if err != nil {
		h.writeError(w, err)
		return
	}

	exec, err := h.service.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, exec)
}

func (h *Handler) handleExecutionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, errors.NewRequestValidationFailedError("execution id is required"))
		return
	}

	exec, err := h.service.ExecutionByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, exec)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (dto *executeRequest) toEngineRequest() (*execution.Request, error) {
	var executedAt time.Time
	if dto.ExecutionTimestamp != "" {
		parsed, err := time.Parse(time.RFC3339, dto.ExecutionTimestamp)
		if err != nil {
			return nil, errors.NewRequestValidationFailedError("executionTimestamp must be RFC3339")
		}
		executedAt = parsed
	}

	req := &execution.Request{
		TemplateID:     dto.TemplateID,
		GroupID:        dto.GroupID,
		ExecutorUserID: dto.ExecutorUserID,
		TargetType:     dto.TargetType,
		TargetID:       dto.TargetID,
		ExecutedAt:     executedAt,
		Notes:          dto.Notes,
		Answers:        make([]execution.AnswerInput, 0, len(dto.Answers)),
	}
	for _, a := range dto.Answers {
		req.Answers = append(req.Answers, execution.AnswerInput{
			QuestionID:     a.QuestionID,
			ApprovalStatus: models.ApprovalStatus(a.ApprovalStatus),
			ApprovalValue:  a.ApprovalValue,
			IsSkipped:      a.IsSkipped,
		})
	}
	return req, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)

	resp := errorResponse{Code: "INTERNAL_ERROR", Message: "internal error"}
	if code := errors.CodeOf(err); code != "" {
		var se *errors.StandardError
		if stdErr, ok := err.(*errors.StandardError); ok {
			se = stdErr
		}
		resp.Code = string(code)
		if se != nil {
			resp.Message = se.Message
			resp.Details = se.Details
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed", map[string]interface{}{"status": status})
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("response encode failed", nil)
	}
}
