package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/engine/execution"
	"checklist-engine/internal/models"
)

type stubService struct {
	executeFn func(ctx context.Context, req *execution.Request) (*models.Execution, error)
	byIDFn    func(ctx context.Context, id string) (*models.Execution, error)
	lastReq   *execution.Request
}

func (s *stubService) Execute(ctx context.Context, req *execution.Request) (*models.Execution, error) {
	s.lastReq = req
	if s.executeFn != nil {
		return s.executeFn(ctx, req)
	}
	return &models.Execution{ID: "exec-1", Status: models.ExecutionStatusCompleted}, nil
}

func (s *stubService) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	if s.byIDFn != nil {
		return s.byIDFn(ctx, id)
	}
	return &models.Execution{ID: id, Status: models.ExecutionStatusCompleted}, nil
}

func newTestServer(t *testing.T, svc *stubService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(svc, logger.NewTestLogger(t)).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const validBody = `{
	"templateId": "tpl-1",
	"executorUserId": "user-1",
	"targetType": "warehouse",
	"targetId": "wh-9",
	"executionTimestamp": "2026-08-30T10:00:00Z",
	"answers": [
		{"questionId": "q1", "approvalStatus": "APPROVED", "approvalValue": 1},
		{"questionId": "q2", "approvalStatus": "INTERMEDIATE", "approvalValue": 0.5, "isSkipped": false}
	]
}`

func TestHandleExecuteSuccess(t *testing.T) {
	svc := &stubService{}
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/v1/executions", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var exec models.Execution
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exec))
	assert.Equal(t, "exec-1", exec.ID)

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "tpl-1", svc.lastReq.TemplateID)
	assert.Equal(t, "user-1", svc.lastReq.ExecutorUserID)
	require.Len(t, svc.lastReq.Answers, 2)
	assert.Equal(t, models.ApprovalStatusIntermediate, svc.lastReq.Answers[1].ApprovalStatus)
	assert.Equal(t, 2026, svc.lastReq.ExecutedAt.Year())
}

func TestHandleExecuteMalformedJSON(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	resp, err := http.Post(srv.URL+"/api/v1/executions", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(errors.ErrCodeRequestValidationFailed), body.Code)
}

func TestHandleExecuteSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing required fields",
			body: `{"templateId": "tpl-1"}`,
		},
		{
			name: "approval value above maximum",
			body: `{
				"templateId": "tpl-1", "executorUserId": "u", "targetType": "t", "targetId": "x",
				"answers": [{"questionId": "q1", "approvalStatus": "APPROVED", "approvalValue": 1.5}]
			}`,
		},
		{
			name: "invalid approval status enum",
			body: `{
				"templateId": "tpl-1", "executorUserId": "u", "targetType": "t", "targetId": "x",
				"answers": [{"questionId": "q1", "approvalStatus": "MAYBE", "approvalValue": 1}]
			}`,
		},
		{
			name: "answers not an array",
			body: `{"templateId": "tpl-1", "executorUserId": "u", "targetType": "t", "targetId": "x", "answers": {}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubService{})
			resp, err := http.Post(srv.URL+"/api/v1/executions", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleExecuteBadTimestamp(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	body := `{
		"templateId": "tpl-1", "executorUserId": "u", "targetType": "t", "targetId": "x",
		"executionTimestamp": "30/08/2026",
		"answers": []
	}`
	resp, err := http.Post(srv.URL+"/api/v1/executions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleExecuteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        errors.NewExecutionTargetConflictError("both set"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errors.ErrCodeExecutionTargetConflict),
		},
		{
			name:       "not found",
			err:        errors.NewTemplateNotFoundError("tpl-1"),
			wantStatus: http.StatusNotFound,
			wantCode:   string(errors.ErrCodeTemplateNotFound),
		},
		{
			name:       "persistence error",
			err:        errors.NewDatabaseInsertFailedError("createExecution", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(errors.ErrCodeDatabaseInsertFailed),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				executeFn: func(context.Context, *execution.Request) (*models.Execution, error) {
					return nil, tt.err
				},
			}
			srv := newTestServer(t, svc)

			resp, err := http.Post(srv.URL+"/api/v1/executions", "application/json", strings.NewReader(validBody))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandleExecutionByID(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	resp, err := http.Get(srv.URL + "/api/v1/executions/exec-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var exec models.Execution
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exec))
	assert.Equal(t, "exec-42", exec.ID)
}

func TestHandleExecutionByIDNotFound(t *testing.T) {
	svc := &stubService{
		byIDFn: func(_ context.Context, id string) (*models.Execution, error) {
			return nil, errors.NewExecutionNotFoundError(id)
		},
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/v1/executions/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
