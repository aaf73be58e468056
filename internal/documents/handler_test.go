package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docs-backend/internal/bootstrap"
	"docs-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		MaxUploadBytes:  1 << 20,
		AllowedMimeTypes: []string{
			"application/pdf",
			"image/png",
			"text/plain",
		},
		OCRLanguages:   []string{"eng"},
		OCRMaxAttempts: 3,
	}
}

func uploadRequest(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	fileWriter, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create form part: %v", err)
	}
	if _, err := fileWriter.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-Id", "test-user")
	return req
}

func TestUploadProcessesInlineAndServesExtraction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No queue configured, so the upload path processes inline.
	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	router := app.Router

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("hello extraction world"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}
	if created.FileName != "notes.txt" {
		t.Fatalf("expected fileName notes.txt, got %s", created.FileName)
	}

	// Inline processing finished before the response, so status is terminal.
	reqStatus := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/status", nil)
	reqStatus.Header.Set("X-User-Id", "test-user")
	respStatus := httptest.NewRecorder()
	router.ServeHTTP(respStatus, reqStatus)

	if respStatus.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respStatus.Code)
	}
	var status struct {
		Status   string `json:"status"`
		Attempts int    `json:"attempts"`
	}
	if err := json.NewDecoder(respStatus.Body).Decode(&status); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if status.Status != "completed" {
		t.Fatalf("expected completed, got %s", status.Status)
	}
	if status.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", status.Attempts)
	}

	reqResult := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/extraction", nil)
	reqResult.Header.Set("X-User-Id", "test-user")
	respResult := httptest.NewRecorder()
	router.ServeHTTP(respResult, reqResult)

	if respResult.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respResult.Code, respResult.Body.String())
	}
	var result struct {
		FullText  string  `json:"fullText"`
		Language  string  `json:"language"`
		PageCount int     `json:"pageCount"`
		Conf      float64 `json:"confidence"`
	}
	if err := json.NewDecoder(respResult.Body).Decode(&result); err != nil {
		t.Fatalf("decode extraction response: %v", err)
	}
	if result.FullText != "hello extraction world" {
		t.Fatalf("unexpected full text %q", result.FullText)
	}
	if result.PageCount != 1 {
		t.Fatalf("expected 1 page, got %d", result.PageCount)
	}
	if result.Conf != 1 {
		t.Fatalf("expected confidence 1 for plain text, got %f", result.Conf)
	}
}

func TestUploadRejectsDeniedExtension(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	req := uploadRequest(t, "setup.exe", "application/pdf", []byte("%PDF-1.4\n"))
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if body.Error.Code != "INVALID_FILE_TYPE" {
		t.Fatalf("expected INVALID_FILE_TYPE, got %s", body.Error.Code)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	cfg.MaxUploadBytes = 16
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	req := uploadRequest(t, "big.txt", "text/plain", []byte(strings.Repeat("x", 64)))
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if body.Error.Code != "DOCUMENT_TOO_LARGE" {
		t.Fatalf("expected DOCUMENT_TOO_LARGE, got %s", body.Error.Code)
	}
}

func TestStatusUnknownDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/does-not-exist/status", nil)
	req.Header.Set("X-User-Id", "test-user")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestListDocumentsIsScopedToUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(testConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	router := app.Router

	req := uploadRequest(t, "mine.txt", "text/plain", []byte("my document"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	reqList.Header.Set("X-User-Id", "someone-else")
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)

	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}
	var docs []json.RawMessage
	if err := json.NewDecoder(respList.Body).Decode(&docs); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty list for another user, got %d", len(docs))
	}
}
