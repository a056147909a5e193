// archive.go - Disaster-recovery copies of committed image rows.
//
// A background sweeper copies image binaries to a MinIO/S3 bucket
// after they are committed. It runs strictly downstream of the
// persistence gateway and never participates in the upload pipeline,
// so the single-insert atomicity of the core is untouched.
package server

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveConfig configures the image archiver. Disabled unless the
// DRIFT_S3_* variables are all present.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Interval  time.Duration
}

// LoadArchiveConfig reads archiver settings from the environment.
func LoadArchiveConfig() ArchiveConfig {
	cfg := ArchiveConfig{
		Endpoint:  os.Getenv("DRIFT_S3_ENDPOINT"),
		AccessKey: os.Getenv("DRIFT_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("DRIFT_S3_SECRET_KEY"),
		Bucket:    os.Getenv("DRIFT_S3_BUCKET"),
		Prefix:    os.Getenv("DRIFT_S3_PREFIX"),
		Interval:  5 * time.Minute,
	}
	if raw := os.Getenv("DRIFT_S3_ARCHIVE_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Interval = d
		}
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "images"
	}
	cfg.Enabled = cfg.Endpoint != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Bucket != ""
	return cfg
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// Archiver sweeps unarchived image rows into the configured bucket.
type Archiver struct {
	cfg      ArchiveConfig
	db       *sql.DB
	client   *minio.Client
	stopChan chan struct{}
}

// NewArchiver builds the MinIO client and verifies the bucket exists.
func NewArchiver(cfg ArchiveConfig, db *sql.DB) (*Archiver, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("archive bucket does not exist: %s", cfg.Bucket)
	}

	return &Archiver{
		cfg:      cfg,
		db:       db,
		client:   client,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the periodic sweep.
func (a *Archiver) Start() {
	Info("image archiver started", map[string]any{
		"bucket":   a.cfg.Bucket,
		"prefix":   a.cfg.Prefix,
		"interval": a.cfg.Interval.String(),
	})

	ticker := time.NewTicker(a.cfg.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := a.sweep(context.Background()); err != nil {
					Error("archive sweep failed", nil, err)
				}
			case <-a.stopChan:
				Info("image archiver stopped", nil)
				return
			}
		}
	}()
}

// Stop halts the sweeper.
func (a *Archiver) Stop() {
	close(a.stopChan)
}

// sweep copies a batch of unarchived rows to the bucket and marks them.
func (a *Archiver) sweep(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, filename, mime, image
		FROM images
		WHERE archived_at IS NULL
		ORDER BY created_at
		LIMIT 100
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type pending struct {
		id       string
		filename string
		mime     string
		data     []byte
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.filename, &p.mime, &p.data); err != nil {
			return err
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var archived int64
	for _, p := range batch {
		key := path.Join(a.cfg.Prefix, p.filename)
		_, err := a.client.PutObject(ctx, a.cfg.Bucket, key,
			bytes.NewReader(p.data), int64(len(p.data)),
			minio.PutObjectOptions{ContentType: p.mime},
		)
		if err != nil {
			Error("archive put failed", map[string]any{"filename": p.filename}, err)
			continue
		}
		if _, err := a.db.ExecContext(ctx,
			"UPDATE images SET archived_at = now() WHERE id = $1", p.id,
		); err != nil {
			Error("archive mark failed", map[string]any{"filename": p.filename}, err)
			continue
		}
		archived++
	}

	if archived > 0 {
		GetMetrics().RecordArchived(archived)
		Info("archived images", map[string]any{"count": archived})
	}
	return nil
}
