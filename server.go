package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"biorel/config"
	"biorel/models"
	"biorel/providers"
	"biorel/services"
)

// namespaceAPI is the part of a namespace manager the HTTP API exposes.
type namespaceAPI interface {
	Namespace(ctx context.Context) (*models.Namespace, error)
	Upload(ctx context.Context, update bool) (*services.UploadResult, error)
	Drop(ctx context.Context) (*models.Namespace, error)
	Write(ctx context.Context, w io.Writer) error
}

// errUnknownSource is returned by an ingestTrigger for datasets that are not enabled.
var errUnknownSource = errors.New("unknown source")

// ingestTrigger starts the ingestion of a dataset in the background.
type ingestTrigger func(source string) error

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled namespace and ingestion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	m, err := a.namespaceManager()
	if err != nil {
		return err
	}
	factory, err := a.sinkFactory(sinkDatabase)
	if err != nil {
		return err
	}
	ingest := newIngestService(a, factory)

	jobsCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	jobs := newBackgroundJobs(jobsCtx)

	enabled := make(map[string]bool)
	for _, p := range a.enabledProviders() {
		enabled[p.Name()] = true
	}
	trigger := newIngestTrigger(jobs, enabled, a.provider, func(ctx context.Context, p providers.Provider) error {
		_, _, err := ingest.Run(ctx, p)
		if err != nil {
			a.log.Error("Triggered ingestion failed", zap.String("source", p.Name()), zap.Error(err))
		}
		return err
	})

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = scheduler.AddFunc(a.cfg.CronSchedule, func() {
		a.log.Info("Running scheduled update...")
		if res, err := m.Upload(jobsCtx, true); err != nil {
			a.log.Error("Scheduled namespace update failed", zap.Error(err))
		} else {
			a.log.Info("Scheduled namespace update completed", zap.Int("added", res.Added))
		}
		for _, p := range a.enabledProviders() {
			if _, res, err := ingest.Run(jobsCtx, p); err != nil {
				a.log.Error("Scheduled ingestion failed", zap.String("source", p.Name()), zap.Error(err))
			} else {
				a.log.Info("Scheduled ingestion completed", zap.String("source", p.Name()), zap.Int("edges", res.Edges))
			}
		}
	})
	if err != nil {
		return err
	}
	scheduler.Start()

	router := newRouter(a.cfg, a.db, m, trigger, a.log)
	a.log.Info("Starting server", zap.String("port", a.cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		serveErr = srv.Shutdown(shutdownCtx)
		cancel()
	}

	// Running jobs see a cancelled context; wait until they have returned.
	cancelJobs()
	<-scheduler.Stop().Done()
	jobs.Wait()
	a.log.Info("Background jobs finished")
	return serveErr
}

// backgroundJobs runs goroutines that share one context and can be waited for.
type backgroundJobs struct {
	ctx context.Context
	wg  sync.WaitGroup
}

func newBackgroundJobs(ctx context.Context) *backgroundJobs {
	return &backgroundJobs{ctx: ctx}
}

// Go runs fn in its own goroutine with the jobs' context.
func (b *backgroundJobs) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
}

// Wait blocks until every started job has returned.
func (b *backgroundJobs) Wait() {
	b.wg.Wait()
}

// newIngestTrigger returns a trigger that starts run for enabled sources as a background job.
func newIngestTrigger(
	jobs *backgroundJobs,
	enabled map[string]bool,
	provider func(string) (providers.Provider, error),
	run func(context.Context, providers.Provider) error,
) ingestTrigger {
	return func(source string) error {
		if !enabled[source] {
			return errUnknownSource
		}
		p, err := provider(source)
		if err != nil {
			return errUnknownSource
		}
		jobs.Go(func(ctx context.Context) { _ = run(ctx, p) })
		return nil
	}
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func newRouter(cfg *config.Config, db *gorm.DB, ns namespaceAPI, trigger ingestTrigger, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", apiKeyAuthMiddleware(cfg))
	setupNamespaceRoutes(api, ns, log)
	setupIngestRoutes(api, trigger)
	setupEdgeRoutes(api, db, log)
	return router
}

func setupNamespaceRoutes(router *gin.RouterGroup, ns namespaceAPI, log *zap.Logger) {
	rg := router.Group("/namespace")

	rg.GET("", func(c *gin.Context) {
		current, err := ns.Namespace(c.Request.Context())
		if err != nil {
			log.Error("Failed to load namespace", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if current == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "namespace not found"})
			return
		}
		c.JSON(http.StatusOK, current)
	})

	rg.POST("/upload", func(c *gin.Context) {
		update, _ := strconv.ParseBool(c.Query("update"))
		res, err := ns.Upload(c.Request.Context(), update)
		if err != nil {
			log.Error("Namespace upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"namespace": res.Namespace,
			"created":   res.Created,
			"added":     res.Added,
			"skipped":   res.Skipped,
		})
	})

	rg.DELETE("", func(c *gin.Context) {
		dropped, err := ns.Drop(c.Request.Context())
		if err != nil {
			log.Error("Namespace drop failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "drop failed"})
			return
		}
		if dropped == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "namespace not found"})
			return
		}
		c.JSON(http.StatusOK, dropped)
	})

	rg.GET("/belns", func(c *gin.Context) {
		var buf bytes.Buffer
		if err := ns.Write(c.Request.Context(), &buf); err != nil {
			log.Error("Namespace write failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	})
}

func setupIngestRoutes(router *gin.RouterGroup, trigger ingestTrigger) {
	router.POST("/ingest/:source", func(c *gin.Context) {
		source := c.Param("source")
		if err := trigger(source); err != nil {
			if errors.Is(err, errUnknownSource) {
				c.JSON(http.StatusNotFound, gin.H{"error": "source not enabled"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Ingestion of " + source + " triggered."})
	})
}

const (
	defaultEdgeLimit = 100
	maxEdgeLimit     = 1000
)

func setupEdgeRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	router.GET("/edges", func(c *gin.Context) {
		limit := defaultEdgeLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = min(n, maxEdgeLimit)
		}

		q := db.WithContext(c.Request.Context()).Model(&models.Edge{})
		for param, column := range map[string]string{
			"source":          "source",
			"target":          "target",
			"relation":        "relation",
			"citation":        "citation",
			"source_database": "source_database",
			"run_id":          "run_id",
		} {
			if v := c.Query(param); v != "" {
				q = q.Where(column+" = ?", v)
			}
		}

		var edges []models.Edge
		if err := q.Order("id").Limit(limit).Find(&edges).Error; err != nil {
			log.Error("Failed to query edges", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, edges)
	})
}
