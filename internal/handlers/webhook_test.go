package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/services"
)

type stubWebhooks struct {
	result *services.WebhookResult
	err    error
	lastIn services.WebhookInput
}

func (s *stubWebhooks) Ingest(ctx context.Context, input services.WebhookInput) (*services.WebhookResult, error) {
	s.lastIn = input
	return s.result, s.err
}

func webhookRouter(stub *stubWebhooks, t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(stub, testLogger(t))
	router := gin.New()
	router.POST("/ocr", h.OCR)
	return router
}

func TestWebhookOCRSuccess(t *testing.T) {
	taskID := uuid.New()
	stub := &stubWebhooks{
		result: &services.WebhookResult{
			Classification: "ad",
			TaskCreated:    true,
			TaskID:         &taskID,
		},
	}
	router := webhookRouter(stub, t)

	w := performJSON(t, router, http.MethodPost, "/ocr",
		`{"source":"scanner-1","imageId":"img-1","text":"sale! unsubscribe at bye@x.com","meta":{"userId":"`+uuid.New().String()+`"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Classification string  `json:"classification"`
		TaskCreated    bool    `json:"taskCreated"`
		TaskID         *string `json:"taskId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Classification != "ad" || !resp.TaskCreated || resp.TaskID == nil || *resp.TaskID != taskID.String() {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if stub.lastIn.Source != "scanner-1" || stub.lastIn.ImageID != "img-1" {
		t.Fatalf("input not forwarded: %+v", stub.lastIn)
	}
}

func TestWebhookOCRNullTaskID(t *testing.T) {
	stub := &stubWebhooks{
		result: &services.WebhookResult{Classification: "official"},
	}
	router := webhookRouter(stub, t)

	w := performJSON(t, router, http.MethodPost, "/ocr",
		`{"source":"s","imageId":"i","text":"invoice","meta":{"userId":"`+uuid.New().String()+`"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := resp["taskId"]; !ok || v != nil {
		t.Fatalf("taskId must serialize as explicit null: %s", w.Body.String())
	}
}

func TestWebhookOCRValidationError(t *testing.T) {
	stub := &stubWebhooks{err: apierr.Validation("source, imageId, and text are required")}
	router := webhookRouter(stub, t)

	w := performJSON(t, router, http.MethodPost, "/ocr", `{"source":"s"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}
