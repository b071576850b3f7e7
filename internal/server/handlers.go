// internal/server/handlers.go
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"claude-restore/internal/archive"
	"claude-restore/internal/checkpoint"
	"claude-restore/internal/errs"
	"claude-restore/internal/observability"
	"claude-restore/internal/session"
)

const maxImportBody = 1 << 30

// Handlers serves the JSON API
type Handlers struct {
	store    *session.Store
	browser  *checkpoint.Browser
	restorer *checkpoint.Restorer
	exporter *archive.Exporter
	importer *archive.Importer
	metrics  *observability.Metrics
	now      func() time.Time
}

// Deps are the components the handlers delegate to
type Deps struct {
	Store    *session.Store
	Browser  *checkpoint.Browser
	Restorer *checkpoint.Restorer
	Exporter *archive.Exporter
	Importer *archive.Importer
	Metrics  *observability.Metrics
}

// NewHandlers creates Handlers from deps
func NewHandlers(deps Deps) *Handlers {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &Handlers{
		store:    deps.Store,
		browser:  deps.Browser,
		restorer: deps.Restorer,
		exporter: deps.Exporter,
		importer: deps.Importer,
		metrics:  metrics,
		now:      time.Now,
	}
}

// respondError writes err as {"error": message} with its taxonomy status
func respondError(c *gin.Context, err error) {
	status := errs.Status(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(c).Error("request error", "error", err)
	} else {
		loggerFrom(c).Debug("request rejected", "kind", errs.KindOf(err), "error", err)
	}
	c.JSON(status, gin.H{"error": errs.Message(err)})
}

// HealthCheck handles GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListProjects handles GET /api/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// ListConversations handles GET /api/projects/:projectId/conversations
func (h *Handlers) ListConversations(c *gin.Context) {
	conversations, err := h.store.ListConversations(c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// ListCheckpoints handles GET /api/conversations/:conversationId/checkpoints
func (h *Handlers) ListCheckpoints(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		respondError(c, errs.New(errs.MissingParameter, "Missing projectId query parameter"))
		return
	}

	listing, err := h.browser.List(projectID, c.Param("conversationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GetBlob handles GET /api/blob
func (h *Handlers) GetBlob(c *gin.Context) {
	projectID := c.Query("projectId")
	conversationID := c.Query("conversationId")
	if projectID == "" || conversationID == "" {
		respondError(c, errs.New(errs.MissingParameter,
			"Missing required query parameters: projectId, conversationId, checkpointMessageId, filePath"))
		return
	}

	blob, err := h.browser.Blob(projectID, conversationID, c.Query("checkpointMessageId"), c.Query("filePath"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !blob.Binary {
		c.Header("X-File-Path", blob.FilePath)
		c.Header("X-Backup-Version", strconv.Itoa(blob.Version))
	}
	c.Data(http.StatusOK, blob.ContentType, blob.Content)
}

// Restore handles POST /api/restore
func (h *Handlers) Restore(c *gin.Context) {
	var req checkpoint.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Wrap(errs.InvalidFormat, err, "Invalid request body"))
		return
	}

	result, err := h.restorer.Restore(req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.metrics.ObserveRestore(result.Count, result.Skipped, len(result.Warnings))
	c.JSON(http.StatusOK, result)
}

// ExportGlobal handles GET /api/export/global
func (h *Handlers) ExportGlobal(c *gin.Context) {
	h.export(c, archive.ScopeGlobal, h.exporter.Global)
}

// ExportProject handles GET /api/export/projects/:projectId
func (h *Handlers) ExportProject(c *gin.Context) {
	h.export(c, archive.ScopeProject, func() (*archive.Bundle, error) {
		return h.exporter.Project(c.Param("projectId"))
	})
}

// ExportConversation handles GET /api/export/projects/:projectId/conversations/:conversationId
func (h *Handlers) ExportConversation(c *gin.Context) {
	h.export(c, archive.ScopeConversation, func() (*archive.Bundle, error) {
		return h.exporter.Conversation(c.Param("projectId"), c.Param("conversationId"))
	})
}

// ExportCheckpoint handles GET /api/export/checkpoint
func (h *Handlers) ExportCheckpoint(c *gin.Context) {
	h.export(c, archive.ScopeCheckpoint, func() (*archive.Bundle, error) {
		return h.exporter.Checkpoint(c.Query("projectId"), c.Query("conversationId"), c.Query("checkpointMessageId"))
	})
}

func (h *Handlers) export(c *gin.Context, scope archive.Scope, build func() (*archive.Bundle, error)) {
	compress := false
	switch c.Query("compress") {
	case "":
	case "zstd":
		compress = true
	default:
		respondError(c, errs.New(errs.InvalidFormat, "Unsupported compression: %s", c.Query("compress")))
		return
	}

	bundle, err := build()
	if err != nil {
		h.metrics.ObserveArchive("export", string(scope), 0, err)
		respondError(c, err)
		return
	}

	data, err := archive.Marshal(bundle, compress)
	if err != nil {
		h.metrics.ObserveArchive("export", string(scope), 0, err)
		respondError(c, err)
		return
	}
	h.metrics.ObserveArchive("export", string(scope), len(bundle.Files), nil)

	loggerFrom(c).Info("bundle exported",
		"scope", scope,
		"files", len(bundle.Files),
		"size", humanize.Bytes(uint64(len(data))),
		"compressed", compress)

	contentType := "application/json"
	if compress {
		contentType = "application/zstd"
	}
	c.Header("Content-Disposition", `attachment; filename="`+archive.Filename(bundle, compress, h.now())+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// importRequest wraps a bundle with its import options. A body without
// "data" is taken to be the bundle itself, with options from the query.
type importRequest struct {
	Data      json.RawMessage `json:"data"`
	Strategy  string          `json:"strategy"`
	TargetDir string          `json:"targetDir"`
}

func (h *Handlers) readImport(c *gin.Context) (*archive.Bundle, *importRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, errs.Wrap(errs.InvalidFormat, err, "Import body too large")
		}
		return nil, nil, errs.Wrap(errs.InvalidFormat, err, "Failed to read request body")
	}

	body, err = archive.Unwrap(body)
	if err != nil {
		return nil, nil, err
	}

	var req importRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, errs.Wrap(errs.InvalidFormat, err, "Invalid request body")
	}
	if len(bytes.TrimSpace(req.Data)) == 0 {
		req.Data = body
		req.Strategy = c.Query("strategy")
		req.TargetDir = c.Query("targetDir")
	}

	bundle, err := archive.Decode(req.Data)
	if err != nil {
		return nil, nil, err
	}
	return bundle, &req, nil
}

// ImportGlobal handles POST /api/import/global
func (h *Handlers) ImportGlobal(c *gin.Context) {
	h.importBundle(c, archive.ScopeGlobal, func(b *archive.Bundle, req *importRequest) (*archive.ImportResult, error) {
		return h.importer.Global(b, archive.ParseStrategy(req.Strategy))
	})
}

// ImportConversation handles POST /api/import/projects/:projectId/conversations
func (h *Handlers) ImportConversation(c *gin.Context) {
	h.importBundle(c, archive.ScopeConversation, func(b *archive.Bundle, _ *importRequest) (*archive.ImportResult, error) {
		return h.importer.Conversation(c.Param("projectId"), b)
	})
}

// ImportCheckpoint handles POST /api/import/checkpoint
func (h *Handlers) ImportCheckpoint(c *gin.Context) {
	h.importBundle(c, archive.ScopeCheckpoint, func(b *archive.Bundle, req *importRequest) (*archive.ImportResult, error) {
		return h.importer.Checkpoint(b, req.TargetDir)
	})
}

func (h *Handlers) importBundle(c *gin.Context, scope archive.Scope,
	run func(*archive.Bundle, *importRequest) (*archive.ImportResult, error)) {

	bundle, req, err := h.readImport(c)
	if err == nil {
		var result *archive.ImportResult
		result, err = run(bundle, req)
		if err == nil {
			h.metrics.ObserveArchive("import", string(scope), result.FilesImported, nil)
			c.JSON(http.StatusOK, result)
			return
		}
	}

	h.metrics.ObserveArchive("import", string(scope), 0, err)
	respondError(c, err)
}
