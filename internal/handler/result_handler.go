package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
)

const keepAliveInterval = 30 * time.Second

// ResultHandler handles staff review endpoints: result listings, per-question
// breakdowns, dashboard stats, and the live submission feed.
type ResultHandler struct {
	resultService *service.ResultService
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, rdb *redis.Client, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		rdb:           rdb,
		log:           log.With().Str("component", "result_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/v1/staff/results?department=...&page=1&per_page=20
func (h *ResultHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, total, err := h.resultService.List(c.Request.Context(), c.Query("department"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// GetResult godoc
// GET /api/v1/staff/results/:id
func (h *ResultHandler) GetResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.resultService.Detail(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": detail})
}

// GetStats godoc
// GET /api/v1/staff/stats
func (h *ResultHandler) GetStats(c *gin.Context) {
	stats, err := h.resultService.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// LiveResultsSSE godoc
// GET /api/v1/staff/results/live
// Streams submission events over SSE as the stats worker publishes them.
func (h *ResultHandler) LiveResultsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ResultsLiveChannel())
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Msg("Staff attached to live results SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	c.Writer.Flush()

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Staff detached from live results SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("submission", msg.Payload)
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.SSEvent("ping", string(pingPayload))
			c.Writer.Flush()
		}
	}
}
