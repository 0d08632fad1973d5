package status

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortflow/internal/bot"
	"shortflow/internal/position"
)

// Handler 状态接口：展示当前持仓记录和下一次开仓时间，另有手动平仓入口
type Handler struct {
	tracker *position.Tracker
	bot     *bot.Bot
	started time.Time
}

func NewHandler(tracker *position.Tracker, b *bot.Bot) *Handler {
	return &Handler{
		tracker: tracker,
		bot:     b,
		started: time.Now().UTC(),
	}
}

type statusResponse struct {
	Uptime      string      `json:"uptime"`
	NextTrigger string      `json:"next_trigger"`
	Position    interface{} `json:"position"` // 本地持仓记录，无持仓时为null
}

func (h *Handler) Status() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := h.tracker.Record()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := statusResponse{
			Uptime:      time.Since(h.started).Round(time.Second).String(),
			NextTrigger: h.bot.NextTrigger().Format(time.RFC3339),
		}
		if rec != nil {
			resp.Position = rec
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Close 手动市价平掉当前空头仓位并清除本地记录
func (h *Handler) Close() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.tracker.CloseShort(c.Request.Context()); err != nil {
			if errors.Is(err, position.ErrNoPosition) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "position closed"})
	}
}

func (h *Handler) Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "\r\nSuccess")
	}
}
