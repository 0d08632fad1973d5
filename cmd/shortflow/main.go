package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goexv2 "github.com/nntaoli-project/goex/v2"

	"shortflow/conf"
	"shortflow/internal/bot"
	"shortflow/internal/exchange"
	"shortflow/internal/executor"
	"shortflow/internal/handler/status"
	"shortflow/internal/model"
	"shortflow/internal/position"
	"shortflow/internal/router"
	"shortflow/internal/scheduler"
	"shortflow/internal/state"
	"shortflow/pkg/logger"
	"shortflow/pkg/recorder"
)

func main() {
	configPath := flag.String("config", "conf/config.yaml", "path to config file")
	flag.Parse()

	// 加载配置文件（环境变量优先），密钥未配置直接退出
	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(&cfg.Log, cfg.AppName)
	defer logger.Sync()

	if cfg.Okx.Simulated {
		// 设置为模拟环境
		goexv2.DefaultHttpCli.SetHeaders("x-simulated-trading", "1")
	}

	okxEx := exchange.NewOkxExchange(cfg.Okx.ApiKey, cfg.Okx.SecretKey, cfg.Okx.Password)

	store := state.NewStore(cfg.Trade.StateFile)
	journal := recorder.NewJSONFileRecorder(cfg.Trade.JournalFile)
	tracker := position.NewTracker(okxEx, store, cfg.Trade.Symbol, model.OrderTradeType(cfg.Trade.TradeType))
	exec := executor.New(okxEx, store, journal, cfg.Trade)
	sched := scheduler.New(cfg.Trade.EntryHour)

	b := bot.New(cfg, okxEx, tracker, exec, sched)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 启动检查：币对存在、杠杆设置成功，失败直接退出
	if err := b.Startup(ctx); err != nil {
		logger.Fatal("启动检查失败", logger.Pair("err", err.Error()))
	}

	// 状态服务（可选）
	if cfg.Listen != "" {
		srv := statusServer(cfg, tracker, b)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("status server failed on %s: %v", cfg.Listen, err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Infof("status server listening on %s", cfg.Listen)
	}

	if err := b.Run(ctx); err != nil {
		logger.Info("bot stopped", logger.Pair("reason", err.Error()))
	}
}

func statusServer(cfg *conf.Config, tracker *position.Tracker, b *bot.Bot) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())

	apiRouter := router.NewApiRouter(status.NewHandler(tracker, b))
	apiRouter.Load(g)

	return &http.Server{
		Addr:    cfg.Listen,
		Handler: g,
	}
}
