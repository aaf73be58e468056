package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docs-backend/internal/extraction"
	"docs-backend/internal/shared/server/middleware"
	"docs-backend/internal/shared/server/respond"
	"docs-backend/internal/uploads"
)

const (
	// Slack over the validator's ceiling so oversized uploads reach the
	// validator and get the typed DOCUMENT_TOO_LARGE error.
	uploadBodySlack = 1 << 20

	signedURLTTL = 15 * time.Minute
)

// Handler wires HTTP handlers to the document and extraction services.
type Handler struct {
	Svc            *Service
	Results        *extraction.Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, results *extraction.Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, Results: results, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id/status", h.status)
	rg.GET("/documents/:id/extraction", h.extractionResult)
	rg.GET("/documents/:id/url", h.fileURL)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+uploadBodySlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	doc, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		UserID:       userID,
		FileName:     fileHeader.Filename,
		DeclaredMime: fileHeader.Header.Get("Content-Type"),
		Data:         data,
		RequestID:    middleware.RequestIDFromContext(c),
	})
	c.Set("documentId", doc.ID)
	if err != nil {
		if ve, ok := uploads.IsValidationError(err); ok {
			status := http.StatusBadRequest
			if ve.Code == uploads.CodeDocumentTooLarge {
				status = http.StatusRequestEntityTooLarge
			}
			respond.Error(c, status, ve.Code, ve.Message, nil)
			return
		}
		if doc.ID != "" {
			// Document exists; the inline fallback failed and the caller
			// inherits the processing error directly.
			respond.Error(c, http.StatusBadGateway, "extraction_failed", err.Error(), gin.H{"documentId": doc.ID})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) status(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondDocError(c, err)
		return
	}
	respond.OK(c, toStatusResponse(doc))
}

func (h *Handler) extractionResult(c *gin.Context) {
	documentID := c.Param("id")
	if _, err := h.Svc.Get(c.Request.Context(), documentID); err != nil {
		h.respondDocError(c, err)
		return
	}

	result, err := h.Results.GetResult(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, extraction.ErrNoResult) {
			respond.Error(c, http.StatusNotFound, "not_found", "extraction result not available", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch extraction result", nil)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) fileURL(c *gin.Context) {
	url, err := h.Svc.FileURL(c.Request.Context(), c.Param("id"), signedURLTTL)
	if err != nil {
		h.respondDocError(c, err)
		return
	}
	respond.OK(c, gin.H{"url": url, "expiresInSeconds": int64(signedURLTTL.Seconds())})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) respondDocError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
	}
}
