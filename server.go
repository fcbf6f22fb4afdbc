package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invoices_backend/actions"
	"github.com/mmdatafocus/invoices_backend/config"
	"github.com/mmdatafocus/invoices_backend/middlewares"
	"github.com/mmdatafocus/invoices_backend/models"
	"github.com/mmdatafocus/invoices_backend/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func newRouter(cfg config.Config, logger *logrus.Logger, invoiceActions *actions.InvoiceActions, views *utils.ViewCache) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationIdMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerInvoiceRoutes(r, &invoiceHandlers{
		actions: invoiceActions,
		views:   views,
		logger:  logger,
	})
	r.NoRoute(customNotFoundHandler)
	return r
}

// In production the allowlist comes from CORS_ALLOWED_ORIGINS and defaults to deny all.
func corsConfig(cfg config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction() {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationIdHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Location", middlewares.CorrelationIdHeader)
	return corsConfig
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.FullPath(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// SIGTERM on revision shutdown triggers a graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := config.ConnectDatabaseWithRetry(cfg.Database)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Fatal(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	if !cfg.SkipMigrations {
		if err := config.RunMigrations(sigCtx, db, cfg.Database.Driver, config.MigrateUp); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping migrations on startup")
	}

	rdb := config.ConnectRedisWithRetry(sigCtx, cfg.RedisAddress)
	defer func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	views := utils.NewViewCache(rdb, cfg.ViewCacheTTL)
	invoiceActions := actions.NewInvoiceActions(models.NewGormInvoiceStore(db), views, utils.SystemClock{}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, invoiceActions, views),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()
	logger.WithFields(logrus.Fields{"port": cfg.Port}).Info("server started")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
