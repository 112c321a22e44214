package agent

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/history"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/server/middleware"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/server/respond"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

const maxBodySize = 2 << 20 // 2MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches agent routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/agent", middleware.Identity())
	g.POST("/run", h.run)
	g.POST("/undo", h.undo)
	g.POST("/redo", h.redo)
	g.POST("/score", h.score)
	g.POST("/apply-suggestions", h.applySuggestions)
	g.POST("/import", h.importDocument)
	g.GET("/history", h.history)
	g.GET("/versions/:id", h.version)
	g.GET("/design", h.design)
	g.POST("/design/undo", h.undoDesign)
	g.POST("/design/revert", h.revertDesign)
}

type runRequest struct {
	Command       string            `json:"command"`
	Document      json.RawMessage   `json:"document,omitempty"`
	JobText       string            `json:"job_text,omitempty"`
	Job           *jobs.Description `json:"job,omitempty"`
	BaseVersionID string            `json:"base_version_id,omitempty"`
	Options       Options           `json:"options"`
}

func (h *Handler) run(c *gin.Context) {
	var req runRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "command is required", nil)
		return
	}
	doc, ok := parseDocument(c, req.Document)
	if !ok {
		return
	}

	result, err := h.Svc.Run(c.Request.Context(), RunRequest{
		UserID:        middleware.UserIDFromContext(c),
		Command:       req.Command,
		Document:      doc,
		JobText:       req.JobText,
		Job:           req.Job,
		BaseVersionID: req.BaseVersionID,
		Options:       req.Options,
	})
	if err != nil {
		respond.AppError(c, err, result)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) undo(c *gin.Context) {
	head, err := h.Svc.Undo(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, head)
}

func (h *Handler) redo(c *gin.Context) {
	head, err := h.Svc.Redo(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, head)
}

type scoreRequest struct {
	Document   json.RawMessage   `json:"document,omitempty"`
	ResumeText string            `json:"resume_text,omitempty"`
	JobText    string            `json:"job_text,omitempty"`
	Job        *jobs.Description `json:"job,omitempty"`
}

func (h *Handler) score(c *gin.Context) {
	var req scoreRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, ok := parseDocument(c, req.Document)
	if !ok {
		return
	}
	report, err := h.Svc.Score(c.Request.Context(), ScoreRequest{
		Document:   doc,
		ResumeText: req.ResumeText,
		JobText:    req.JobText,
		Job:        req.Job,
	})
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, report)
}

type applyRequest struct {
	Document      json.RawMessage   `json:"document,omitempty"`
	JobText       string            `json:"job_text,omitempty"`
	Job           *jobs.Description `json:"job,omitempty"`
	SuggestionIDs []string          `json:"suggestion_ids"`
}

func (h *Handler) applySuggestions(c *gin.Context) {
	var req applyRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, ok := parseDocument(c, req.Document)
	if !ok {
		return
	}
	res, err := h.Svc.ApplySuggestions(c.Request.Context(), ApplyRequest{
		UserID:        middleware.UserIDFromContext(c),
		Document:      doc,
		JobText:       req.JobText,
		Job:           req.Job,
		SuggestionIDs: req.SuggestionIDs,
	})
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) importDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	if strings.HasPrefix(c.ContentType(), "text/plain") {
		res, err := h.Svc.ImportText(c.Request.Context(), userID, string(payload))
		if err != nil {
			respond.AppError(c, err, nil)
			return
		}
		respond.Created(c, res)
		return
	}
	doc, ok := parseDocument(c, payload)
	if !ok {
		return
	}
	if doc == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document is required", nil)
		return
	}
	res, err := h.Svc.Import(c.Request.Context(), userID, *doc)
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.Created(c, res)
}

func (h *Handler) history(c *gin.Context) {
	view, err := h.Svc.ListHistory(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) version(c *gin.Context) {
	v, err := h.Svc.Version(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "version not found", nil)
			return
		}
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) design(c *gin.Context) {
	state, err := h.Svc.DesignState(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, state)
}

func (h *Handler) undoDesign(c *gin.Context) {
	state, err := h.Svc.UndoDesign(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, state)
}

func (h *Handler) revertDesign(c *gin.Context) {
	state, err := h.Svc.RevertDesign(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err, nil)
		return
	}
	respond.OK(c, state)
}

func bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}

// parseDocument schema-checks a raw document. An absent or null document
// yields nil.
func parseDocument(c *gin.Context, raw []byte) (*model.Document, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, true
	}
	doc, err := model.Parse(raw)
	if err != nil {
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "document does not match schema", schemaErr.Violations)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return nil, false
	}
	return &doc, true
}
