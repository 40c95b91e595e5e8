package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payfill/internal/export"
	"payfill/internal/service"
)

// DocumentHandler handles document processing endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Process handles POST /api/v1/documents
// @Summary Process a document
// @Description Upload a financial document image and run the extraction pipeline
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document image (jpg, png, webp, or pdf)"
// @Success 201 {object} APIResponse "Processed document record"
// @Failure 400 {object} APIResponse "Invalid upload"
// @Failure 413 {object} APIResponse "File too large"
// @Router /documents [post]
func (h *DocumentHandler) Process(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "a 'file' form field is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unable to read uploaded file")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unable to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	record, err := h.documents.Process(c.Request.Context(), service.ProcessInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		ImageBytes:  data,
	}, nil)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, record)
}

// Get handles GET /api/v1/documents/:id
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} APIResponse "Document record"
// @Failure 404 {object} APIResponse "Not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid document id")
		return
	}

	record, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {object} APIResponse "Document records, most recent first"
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	records, err := h.documents.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// MarkPaid handles POST /api/v1/documents/:id/paid
// @Summary Mark a document paid
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} APIResponse "Updated record"
// @Failure 409 {object} APIResponse "Already paid"
// @Router /documents/{id}/paid [post]
func (h *DocumentHandler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid document id")
		return
	}

	record, err := h.documents.MarkPaid(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// ApplyEdits handles PATCH /api/v1/documents/:id/fields
// @Summary Apply user edits to form fields
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param edits body map[string]interface{} true "Form field edits"
// @Success 200 {object} APIResponse "Updated record"
// @Failure 400 {object} APIResponse "Unknown form field"
// @Router /documents/{id}/fields [patch]
func (h *DocumentHandler) ApplyEdits(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid document id")
		return
	}

	var edits map[string]interface{}
	if err := c.ShouldBindJSON(&edits); err != nil || len(edits) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "a non-empty JSON object of form field edits is required")
		return
	}

	record, err := h.documents.ApplyEdits(c.Request.Context(), id, edits)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Not found"
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid document id")
		return
	}

	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// Export handles GET /api/v1/documents/export
// @Summary Export document history
// @Description Download processed documents as CSV or XLSX
// @Tags documents
// @Produce octet-stream
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} binary
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	records, err := h.documents.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		filename := export.BuildFilename("documents", "csv")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)

		if _, err := c.Writer.Write(export.BOM); err != nil {
			return
		}
		w := export.NewWriter(c.Writer)
		if err := w.WriteHeader(); err != nil {
			return
		}
		if err := w.WriteRecords(records); err != nil {
			return
		}
		w.Flush()
	case "xlsx":
		filename := export.BuildFilename("documents", "xlsx")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		_ = export.WriteXLSX(c.Writer, records)
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be csv or xlsx")
	}
}
