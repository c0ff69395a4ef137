package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viewident/viewident/internal/adapters/http/dto"
	"github.com/viewident/viewident/internal/adapters/http/middleware"
	"github.com/viewident/viewident/internal/app"
	"github.com/viewident/viewident/internal/identity"
	"github.com/viewident/viewident/internal/ports"
)

// RequestsHandler exposes the in-flight journal entry of the calling
// request. It is the handler stage of the pipeline: it never receives
// the middleware's view directly, it wraps it in its own and relies on
// canonical identity resolution to reach the shared entry.
type RequestsHandler struct {
	journal *app.Journal
	enabled bool
}

// NewRequestsHandler creates a requests handler. When enabled is false
// the introspection endpoints answer 404 for every request.
func NewRequestsHandler(journal *app.Journal, enabled bool) *RequestsHandler {
	return &RequestsHandler{
		journal: journal,
		enabled: enabled,
	}
}

// handlerView is this stage's own view of the request.
type handlerView struct {
	identity.Meta

	Request *middleware.RequestView
}

// CurrentRequestResponse is the HTTP response structure for the
// introspection endpoint.
type CurrentRequestResponse struct {
	RequestID     string         `json:"requestId"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Method        string         `json:"method"`
	Path          string         `json:"path"`
	Started       time.Time      `json:"started"`
	Annotations   map[string]any `json:"annotations,omitempty"`
}

func toCurrentRequestResponse(record ports.JournalRecord) *CurrentRequestResponse {
	return &CurrentRequestResponse{
		RequestID:     record.RequestID,
		CorrelationID: record.CorrelationID,
		Method:        record.Method,
		Path:          record.Path,
		Started:       record.Started,
		Annotations:   record.Annotations,
	}
}

// AnnotationRequest is the body for adding an annotation to the
// current request's journal entry.
type AnnotationRequest struct {
	Key   string `json:"key" validate:"required,notempty,max=128"`
	Value any    `json:"value" validate:"required"`
}

// GetCurrent handles GET /api/v1/requests/current
// Returns the journal entry accumulated so far for the calling request.
func (h *RequestsHandler) GetCurrent(c *gin.Context) {
	view, ok := h.stageView(c)
	if !ok {
		return
	}

	record, ok := h.journal.Snapshot(view)
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"no journal entry for this request",
		))

		return
	}

	c.JSON(http.StatusOK, toCurrentRequestResponse(record))
}

// Annotate handles POST /api/v1/requests/current/annotations
// Adds a key/value annotation to the calling request's journal entry.
// The annotation is visible to later stages and shipped with the record.
func (h *RequestsHandler) Annotate(c *gin.Context) {
	view, ok := h.stageView(c)
	if !ok {
		return
	}

	var req AnnotationRequest

	err := dto.BindAndValidate(c, &req)
	if err != nil {
		if dto.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation,
				"request validation failed",
				dto.ValidationErrors(err),
			))

			return
		}

		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"malformed annotation request",
		))

		return
	}

	h.journal.Annotate(view, req.Key, req.Value)

	c.Status(http.StatusNoContent)
}

// stageView builds the handler's wrapper view, answering 404 when
// introspection is disabled or the scope middleware is missing.
func (h *RequestsHandler) stageView(c *gin.Context) (*handlerView, bool) {
	if !h.enabled {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"introspection is disabled",
		))

		return nil, false
	}

	base := middleware.GetRequestView(c)
	if base == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"no journal entry for this request",
		))

		return nil, false
	}

	return &handlerView{Meta: identity.NewMeta(), Request: base}, true
}

// RegisterRequestRoutes registers introspection routes on the given router group.
func (h *RequestsHandler) RegisterRequestRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests")
	requests.GET("/current", h.GetCurrent)
	requests.POST("/current/annotations", h.Annotate)
}
