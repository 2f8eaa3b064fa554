package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/doctrack-api/internal/dto"
	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
	"github.com/noah-isme/doctrack-api/pkg/response"
)

type documentService interface {
	Receive(ctx context.Context, actorID string, req dto.ReceiveDocumentRequest) (*models.Document, error)
	CanForward(ctx context.Context, actorID, documentID string) (models.ForwardDecision, error)
	ListForwardableRecipients(ctx context.Context, actorID, documentID string) ([]models.Recipient, error)
	Forward(ctx context.Context, actorID, documentID string, req dto.ForwardRequest) (*models.Movement, error)
	Park(ctx context.Context, actorID, documentID string, req dto.ParkRequest) (*models.Document, error)
	Unpark(ctx context.Context, actorID, documentID string) (*models.Document, error)
	Close(ctx context.Context, actorID, documentID string, req dto.CloseRequest) (*models.Document, error)
	Archive(ctx context.Context, actorID, documentID string) (*models.Document, error)
	MarkPaid(ctx context.Context, actorID, documentID string) (*models.Document, error)
	MarkReplied(ctx context.Context, actorID, documentID string, req dto.MarkRepliedRequest) (*models.Document, error)
	Delete(ctx context.Context, actorID, documentID string) error
	ListDocuments(ctx context.Context, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error)
	GetDetail(ctx context.Context, documentID string) (*dto.DocumentDetail, error)
	MovementHistory(ctx context.Context, documentID string) ([]models.Movement, error)
	DaysHeld(ctx context.Context, documentID string) (*models.TimeHeld, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	RoutingSlip(ctx context.Context, documentID string) ([]byte, string, error)
}

// DocumentHandler exposes document routing endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Register mounts the document routes on the given group.
func (h *DocumentHandler) Register(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.GET("", h.List)
	docs.POST("", h.Receive)
	docs.GET("/:id", h.Get)
	docs.DELETE("/:id", h.Delete)
	docs.GET("/:id/recipients", h.Recipients)
	docs.GET("/:id/can-forward", h.CanForward)
	docs.POST("/:id/forward", h.Forward)
	docs.POST("/:id/park", h.Park)
	docs.POST("/:id/unpark", h.Unpark)
	docs.POST("/:id/close", h.Close)
	docs.POST("/:id/archive", h.Archive)
	docs.POST("/:id/mark-paid", h.MarkPaid)
	docs.POST("/:id/mark-replied", h.MarkReplied)
	docs.GET("/:id/movements", h.Movements)
	docs.GET("/:id/time-held", h.TimeHeld)
	docs.GET("/:id/routing-slip", h.RoutingSlip)
	rg.GET("/sections", h.Sections)
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param kind query string false "NOTESHEET, BILL or LETTER"
// @Param status query string false "Comma separated statuses"
// @Param holder query string false "Current holder ID"
// @Param section query string false "Current section ID"
// @Param mine query bool false "Only documents held by the caller"
// @Param parked query bool false "Parked filter"
// @Param q query string false "Search number, subject or sender"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	query := dto.DocumentQuery{
		Kind:      models.DocumentKind(strings.ToUpper(strings.TrimSpace(c.Query("kind")))),
		HolderID:  strings.TrimSpace(c.Query("holder")),
		SectionID: strings.TrimSpace(c.Query("section")),
		Search:    strings.TrimSpace(c.Query("q")),
	}
	for _, status := range strings.Split(c.Query("status"), ",") {
		if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
			query.Status = append(query.Status, models.DocumentStatus(status))
		}
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		query.HolderID = actorID(c)
	}
	if raw := c.Query("parked"); raw != "" {
		parked, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid parked filter"))
			return
		}
		query.Parked = &parked
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	docs, pagination, err := h.service.ListDocuments(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Receive godoc
// @Summary Receive a new document
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.ReceiveDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Receive(c *gin.Context) {
	var req dto.ReceiveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}
	doc, err := h.service.Receive(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Get godoc
// @Summary Get a document with its movement trail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Recipients godoc
// @Summary List users the caller may forward the document to
// @Tags Forwarding
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/recipients [get]
func (h *DocumentHandler) Recipients(c *gin.Context) {
	recipients, err := h.service.ListForwardableRecipients(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recipients, nil)
}

// CanForward godoc
// @Summary Check whether the caller may forward the document now
// @Tags Forwarding
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/can-forward [get]
func (h *DocumentHandler) CanForward(c *gin.Context) {
	decision, err := h.service.CanForward(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// Forward godoc
// @Summary Forward a document
// @Tags Forwarding
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ForwardRequest true "Forward payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /documents/{id}/forward [post]
func (h *DocumentHandler) Forward(c *gin.Context) {
	var req dto.ForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid forward payload"))
		return
	}
	movement, err := h.service.Forward(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, movement)
}

// Park godoc
// @Summary Park a document
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ParkRequest true "Park payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/park [post]
func (h *DocumentHandler) Park(c *gin.Context) {
	var req dto.ParkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid park payload"))
		return
	}
	h.respondDocument(c)(h.service.Park(c.Request.Context(), actorID(c), c.Param("id"), req))
}

// Unpark godoc
// @Summary Resume a parked document
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/unpark [post]
func (h *DocumentHandler) Unpark(c *gin.Context) {
	h.respondDocument(c)(h.service.Unpark(c.Request.Context(), actorID(c), c.Param("id")))
}

// Close godoc
// @Summary Close a document
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.CloseRequest false "Close payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/close [post]
func (h *DocumentHandler) Close(c *gin.Context) {
	var req dto.CloseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid close payload"))
			return
		}
	}
	h.respondDocument(c)(h.service.Close(c.Request.Context(), actorID(c), c.Param("id"), req))
}

// Archive godoc
// @Summary Archive a closed document
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/archive [post]
func (h *DocumentHandler) Archive(c *gin.Context) {
	h.respondDocument(c)(h.service.Archive(c.Request.Context(), actorID(c), c.Param("id")))
}

// MarkPaid godoc
// @Summary Mark a bill as paid
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/mark-paid [post]
func (h *DocumentHandler) MarkPaid(c *gin.Context) {
	h.respondDocument(c)(h.service.MarkPaid(c.Request.Context(), actorID(c), c.Param("id")))
}

// MarkReplied godoc
// @Summary Record the reply to a letter
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.MarkRepliedRequest true "Reply payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/mark-replied [post]
func (h *DocumentHandler) MarkReplied(c *gin.Context) {
	var req dto.MarkRepliedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reply payload"))
		return
	}
	h.respondDocument(c)(h.service.MarkReplied(c.Request.Context(), actorID(c), c.Param("id"), req))
}

// Movements godoc
// @Summary Movement trail, most recent first
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/movements [get]
func (h *DocumentHandler) Movements(c *gin.Context) {
	movements, err := h.service.MovementHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movements, nil)
}

// TimeHeld godoc
// @Summary Days the current holder has held the document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/time-held [get]
func (h *DocumentHandler) TimeHeld(c *gin.Context) {
	held, err := h.service.DaysHeld(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, held, nil)
}

// RoutingSlip godoc
// @Summary Download the routing slip PDF
// @Tags Documents
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Router /documents/{id}/routing-slip [get]
func (h *DocumentHandler) RoutingSlip(c *gin.Context) {
	body, filename, err := h.service.RoutingSlip(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", filename, body)
}

// Sections godoc
// @Summary List sections
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *DocumentHandler) Sections(c *gin.Context) {
	sections, err := h.service.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

func (h *DocumentHandler) respondDocument(c *gin.Context) func(*models.Document, error) {
	return func(doc *models.Document, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, doc, nil)
	}
}
