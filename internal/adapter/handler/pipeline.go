package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/adapter/dto"
	"github.com/johnquangdev/meeting-intel/internal/usecase/chat"
	"github.com/johnquangdev/meeting-intel/internal/usecase/sync"
	"github.com/johnquangdev/meeting-intel/pkg/config"
)

// Pipeline exposes the sync pipeline and Q&A over HTTP
type Pipeline struct {
	syncService *sync.Service
	chatService *chat.Service
	cfg         *config.Config
	logger      *zap.Logger
}

// NewPipeline creates a new pipeline handler
func NewPipeline(syncService *sync.Service, chatService *chat.Service, cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		syncService: syncService,
		chatService: chatService,
		cfg:         cfg,
		logger:      logger,
	}
}

// TriggerSync runs one synchronous pipeline pass
func (h *Pipeline) TriggerSync(c echo.Context) error {
	req := dto.SyncRequest{
		HoursBack:   h.cfg.Sync.HoursBack,
		MinMeetings: h.cfg.Sync.MinMeetings,
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.HoursBack == 0 {
		req.HoursBack = h.cfg.Sync.HoursBack
	}
	if req.MinMeetings == 0 {
		req.MinMeetings = h.cfg.Sync.MinMeetings
	}

	stats, err := h.syncService.Run(c.Request().Context(), req.HoursBack, req.MinMeetings)
	if err != nil {
		h.logger.Error("❌ Triggered sync failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
			"stats": stats,
		})
	}
	return c.JSON(http.StatusOK, stats)
}

// Stats returns the stats of the most recent run
func (h *Pipeline) Stats(c echo.Context) error {
	stats := h.syncService.LastStats()
	if stats == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "no runs yet"})
	}
	return c.JSON(http.StatusOK, stats)
}

// Ask answers a question over stored meeting intelligence
func (h *Pipeline) Ask(c echo.Context) error {
	var req dto.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var answer string
	var err error
	if req.Semantic {
		answer, err = h.chatService.AnswerSemantic(c.Request().Context(), req.Question, req.ProjectID)
	} else {
		answer, err = h.chatService.Answer(c.Request().Context(), req.Question)
	}
	if err != nil {
		h.logger.Error("❌ Question answering failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.AskResponse{Answer: answer})
}
