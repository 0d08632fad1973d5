package router

import (
	"github.com/gin-gonic/gin"

	"shortflow/internal/handler/status"
	"shortflow/internal/metrics"
)

type ApiRouter struct {
	statusHandler *status.Handler
}

func NewApiRouter(sh *status.Handler) *ApiRouter {
	return &ApiRouter{statusHandler: sh}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	g.GET("/ping", api.statusHandler.Ping())
	g.GET("/status", api.statusHandler.Status())
	// 手动平仓
	g.POST("/close", api.statusHandler.Close())
	// prometheus指标
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
}
