package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"biorel/config"
	"biorel/storage"
)

const backupPrefix = "backups/"

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starting backup...")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	if !cfg.ArchiveEnabled() {
		logging.Fatal("Backup requires S3_URL and S3_BUCKET")
	}

	dump, err := createDump(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to create database dump", zap.Error(err))
	}

	client, err := storage.NewS3Client(ctx, storage.S3Options{
		URL:    cfg.S3URL,
		Region: cfg.S3Region,
		Key:    cfg.S3Key,
		Secret: cfg.S3Secret,
	})
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	archive := &storage.Archive{Client: client, Bucket: cfg.S3Bucket, BaseURL: cfg.S3URL}

	key := backupPrefix + fmt.Sprintf("backup-%s.sql.gz", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := archive.Upload(ctx, key, dump)
	if err != nil {
		logging.Fatal("Failed to upload backup", zap.Error(err))
	}
	logging.Info("Uploaded backup", zap.String("link", link), zap.Int("bytes", len(dump)))

	deleted, err := archive.Rotate(ctx, backupPrefix, cfg.KeepBackups)
	if err != nil {
		logging.Fatal("Failed to rotate old backups", zap.Error(err))
	}
	logging.Info("Backup completed", zap.Strings("deleted", deleted))
}

func createDump(ctx context.Context, cfg *config.Config) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.DBHost,
		"-p", strconv.Itoa(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // password comes from PGPASSWORD
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.DBPassword)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	data, err := compress(stdout)
	if err != nil {
		_ = cmd.Wait()
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func compress(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.Copy(zw, r); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
