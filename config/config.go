package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting read from the environment.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Local download cache, one sub directory per dataset module.
	CacheDir string `envconfig:"CACHE_DIR"`

	IntActURL      string `envconfig:"INTACT_URL" default:"ftp://ftp.ebi.ac.uk/pub/databases/intact/current/psimitab/intact.zip"`
	BioGRIDBaseURL string `envconfig:"BIOGRID_BASE_URL" default:"https://downloads.thebiogrid.org/Download/BioGRID/Release-Archive"`
	BioGRIDVersion string `envconfig:"BIOGRID_VERSION" default:"3.5.183"`

	UniProtBaseURL string `envconfig:"UNIPROT_BASE_URL" default:"https://rest.uniprot.org"`
	UniProtTaxonID int    `envconfig:"UNIPROT_TAXON_ID" default:"9606"`

	// Optional mnemonic cache; in-memory when empty.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Optional graph sink; edges go to the relational store when empty.
	Neo4jURI      string `envconfig:"NEO4J_URI"`
	Neo4jUser     string `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD"`
	Neo4jDatabase string `envconfig:"NEO4J_DATABASE"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * 0"`

	// Archive for written namespaces and graph exports. Archiving is off when S3_BUCKET is empty.
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Number of database backups kept by cmd/backup.
	KeepBackups int `envconfig:"KEEP_BACKUPS" default:"4"`

	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"intact,biogrid"`
}

// DSN returns the PostgreSQL data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Providers returns the enabled dataset names, trimmed and lower cased.
func (c *Config) Providers() []string {
	var names []string
	for _, name := range strings.Split(c.EnabledProviders, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ArchiveEnabled reports whether S3 archiving is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3URL != ""
}

// Load reads the configuration from the environment (and a .env file if present).
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if c.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		c.CacheDir = filepath.Join(home, ".biorel")
	}
	return &c, nil
}
