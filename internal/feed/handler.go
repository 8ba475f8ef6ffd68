package feed

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response bodies are part of the service contract; feed readers and the
// smoke tests match them verbatim.
const (
	noEntriesBody    = "No entries found"
	genericErrorBody = "something went wrong. please check logs"
)

// Handler is the narrow trigger boundary: resolve a series ID, run the
// pipeline, map the outcome to one of three terminal responses.
type Handler struct {
	Builder          *Builder
	FallbackSeriesID string
	Logger           *zap.Logger
}

func NewHandler(b *Builder, fallbackSeriesID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Builder: b, FallbackSeriesID: fallbackSeriesID, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.rss) // GET /rss?seriesId=...
}

func (h *Handler) rss(c *gin.Context) {
	log := h.Logger
	if id, ok := c.Get("request_id"); ok {
		log = log.With(zap.Any("request_id", id))
	}

	seriesID := c.Query("seriesId")
	if seriesID == "" {
		seriesID = h.FallbackSeriesID
	}
	if seriesID == "" {
		log.Error("no series id in request and no fallback configured")
		c.String(http.StatusInternalServerError, genericErrorBody)
		return
	}

	f, err := h.Builder.Build(c.Request.Context(), seriesID)
	if errors.Is(err, ErrNoEntries) {
		// distinct terminal path: worth a loud log entry, but a clean 404
		log.Error("no entries found",
			zap.String("series_id", seriesID),
			zap.String("severity", "critical"))
		c.String(http.StatusNotFound, noEntriesBody)
		return
	}
	if err != nil {
		log.Error("feed build failed",
			zap.String("series_id", seriesID),
			zap.Error(err))
		c.String(http.StatusInternalServerError, genericErrorBody)
		return
	}

	body, err := RenderRSS(f)
	if err != nil {
		log.Error("rss render failed",
			zap.String("series_id", seriesID),
			zap.Error(err))
		c.String(http.StatusInternalServerError, genericErrorBody)
		return
	}

	log.Info("feed served",
		zap.String("series_id", seriesID),
		zap.Int("entries", len(f.Entries)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}
