package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biorel/config"
	"biorel/graph"
	"biorel/models"
	"biorel/providers"
	"biorel/providers/biogrid"
	"biorel/providers/intact"
	"biorel/providers/uniprot"
	"biorel/services"
	"biorel/storage"
)

// app bundles the collaborators every command needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	uniprot *uniprot.Fetcher
	cache   *storage.Cache
	archive *storage.Archive // nil when archiving is not configured
}

func newApp(ctx context.Context) (*app, error) {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logging.Info("Successfully connected to database.")

	if err := migrate(db); err != nil {
		return nil, err
	}

	var mnemonics uniprot.Cache
	if cfg.RedisAddr != "" {
		rc, err := uniprot.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		mnemonics = rc
		logging.Info("Using redis mnemonic cache", zap.String("addr", cfg.RedisAddr))
	}

	a := &app{
		cfg:     cfg,
		log:     logging,
		db:      db,
		uniprot: uniprot.NewFetcher(cfg, mnemonics, logging),
		cache:   storage.NewCache(cfg.CacheDir, logging),
	}

	if cfg.ArchiveEnabled() {
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			URL:    cfg.S3URL,
			Region: cfg.S3Region,
			Key:    cfg.S3Key,
			Secret: cfg.S3Secret,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		a.archive = &storage.Archive{Client: client, Bucket: cfg.S3Bucket, BaseURL: cfg.S3URL}
	}
	return a, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Protein{}, &models.Namespace{}, &models.NamespaceEntry{}, &models.Edge{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) namespaceManager() (*services.NamespaceManager[models.Protein], error) {
	source := services.NewProteinSource(a.db, a.uniprot, a.cfg.UniProtTaxonID, a.log)
	return services.NewNamespaceManager[models.Protein](a.db, source, a.log)
}

func (a *app) provider(name string) (providers.Provider, error) {
	switch name {
	case intact.ModuleName:
		return intact.NewFetcher(a.cfg, a.cache, a.log), nil
	case biogrid.ModuleName:
		return biogrid.NewFetcher(a.cfg, a.cache, a.log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// enabledProviders returns the providers named in ENABLED_PROVIDERS, skipping unknown names.
func (a *app) enabledProviders() []providers.Provider {
	var ps []providers.Provider
	for _, name := range a.cfg.Providers() {
		p, err := a.provider(name)
		if err != nil {
			a.log.Warn("Unknown provider in config", zap.String("provider_name", name))
			continue
		}
		ps = append(ps, p)
	}
	return ps
}

func newIngestService(a *app, factory services.SinkFactory) *services.IngestService {
	return services.NewIngestService(a.uniprot, factory, a.log)
}

const (
	sinkDatabase = "db"
	sinkNeo4j    = "neo4j"
	sinkMemory   = "memory"
)

func (a *app) sinkFactory(kind string) (services.SinkFactory, error) {
	switch kind {
	case sinkDatabase:
		return func(source, runID string) (graph.Sink, error) {
			return graph.NewGormSink(a.db, source, runID), nil
		}, nil
	case sinkNeo4j:
		if a.cfg.Neo4jURI == "" {
			return nil, fmt.Errorf("neo4j sink requires NEO4J_URI")
		}
		return func(source, _ string) (graph.Sink, error) {
			return graph.NewNeo4jSink(a.cfg.Neo4jURI, a.cfg.Neo4jUser, a.cfg.Neo4jPassword, a.cfg.Neo4jDatabase, source)
		}, nil
	case sinkMemory:
		return func(source, runID string) (graph.Sink, error) {
			return graph.New(source + "-" + runID), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", kind)
	}
}

func closeSink(sink graph.Sink) {
	if c, ok := sink.(interface{ Close(context.Context) error }); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	}
}

// archiveFile uploads data below prefix and keeps the newest keepArchives copies.
func (a *app) archiveFile(ctx context.Context, prefix, name string, data []byte) (string, error) {
	if a.archive == nil {
		return "", fmt.Errorf("archiving requires S3_URL and S3_BUCKET")
	}
	link, err := a.archive.Upload(ctx, prefix+name, data)
	if err != nil {
		return "", err
	}
	deleted, err := a.archive.Rotate(ctx, prefix, keepArchives)
	if err != nil {
		a.log.Warn("Archive rotation failed", zap.String("prefix", prefix), zap.Error(err))
	} else if len(deleted) > 0 {
		a.log.Info("Rotated archive", zap.String("prefix", prefix), zap.Strings("deleted", deleted))
	}
	return link, nil
}

const keepArchives = 8
