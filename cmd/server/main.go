package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serirss/internal/feed"
	"serirss/internal/nico"
	"serirss/internal/web"
	"serirss/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := web.SetupTracing(cfg.Trace)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	// One client and one builder per process, reused across requests;
	// neither holds request state.
	client := nico.NewClient(cfg.BaseURL, logger)
	builder := feed.NewBuilder(client, logger)
	handler := feed.NewHandler(builder, cfg.SeriesID, logger)

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
		devInvoke(builder, cfg.SeriesID, logger)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(web.RequestID(), web.TraceContext(), web.AccessLog(logger), gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.RegisterRoutes(router.Group("/rss"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg utils.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// devInvoke runs the pipeline once at startup against the fallback series
// and echoes the result, so local changes can be checked without a client.
func devInvoke(builder *feed.Builder, seriesID string, logger *zap.Logger) {
	if seriesID == "" {
		logger.Warn("development mode but SERIRSS_SERIES_ID is unset, skipping startup invocation")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f, err := builder.Build(ctx, seriesID)
	if err != nil {
		logger.Warn("startup invocation failed", zap.String("series_id", seriesID), zap.Error(err))
		return
	}
	body, err := feed.RenderRSS(f)
	if err != nil {
		logger.Warn("startup render failed", zap.Error(err))
		return
	}
	os.Stdout.Write(append(body, '\n'))
}
