// Package influxstorage writes per-round match series to InfluxDB v2. When
// the server cannot be reached the points are appended to a gzipped line
// protocol backup file instead.
package influxstorage

import (
	"compress/gzip"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/model/convert"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

// pingTimeout bounds the health check in Init.
const pingTimeout = 5 * time.Second

// Backend handles the InfluxDB connection and writes.
type Backend struct {
	cfg    config.InfluxConfig
	logger *slog.Logger

	client  influxdb2.Client
	writer  influxdb2_api.WriteAPIBlocking
	isValid bool

	backupFile   *os.File
	backupWriter *gzip.Writer
}

// New creates a new InfluxDB backend.
func New(cfg config.InfluxConfig, logger *slog.Logger) *Backend {
	return &Backend{
		cfg:    cfg,
		logger: logger,
	}
}

// Init connects to InfluxDB and makes sure the org and bucket exist. If
// the server does not answer, writes go to the backup file.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		b.cfg.URL(),
		b.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetHTTPRequestTimeout(uint(pingTimeout/time.Second)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	// validate client connection health
	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.isValid = false
		b.logger.Warn("InfluxDB client failed to initialize, using backup writer",
			"url", b.cfg.URL(),
			"backupPath", b.cfg.BackupPath,
			"error", err)
		return b.openBackup()
	}

	if err := b.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	b.writer = b.client.WriteAPIBlocking(b.cfg.Org, b.cfg.Bucket)
	b.isValid = true
	b.logger.Info("InfluxDB client initialized", "url", b.cfg.URL(), "bucket", b.cfg.Bucket)
	return nil
}

func (b *Backend) openBackup() error {
	if b.backupWriter != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.cfg.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(b.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = file
	b.backupWriter = gzip.NewWriter(file)
	return nil
}

func (b *Backend) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := b.client.OrganizationsAPI()

	// ensure org exists
	org, err := orgs.FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.logger.Info("Organization not found, creating", "org", b.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %q: %w", b.cfg.Org, err)
		}
	}

	// ensure bucket exists with 90 day retention
	if _, err = b.client.BucketsAPI().FindBucketByName(ctx, b.cfg.Bucket); err != nil {
		b.logger.Info("Bucket not found, creating", "bucket", b.cfg.Bucket)

		rule := domain.RetentionRuleTypeExpire
		_, err = b.client.BucketsAPI().CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %q: %w", b.cfg.Bucket, err)
		}
	}

	return nil
}

// StoreMatch writes the round, player and kill series of the match.
func (b *Backend) StoreMatch(ctx context.Context, rec *match.Record) error {
	points := Points(convert.RecordToMatch(rec))
	if err := b.writePoints(ctx, points); err != nil {
		return err
	}
	b.logger.Info("Match written to InfluxDB", "points", len(points), "backup", !b.isValid)
	return nil
}

// writePoints writes to InfluxDB or the backup file.
func (b *Backend) writePoints(ctx context.Context, points []*influxdb2_write.Point) error {
	if b.isValid {
		if err := b.writer.WritePoint(ctx, points...); err != nil {
			return fmt.Errorf("error sending data to InfluxDB: %w", err)
		}
		return nil
	}

	if b.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	for _, point := range points {
		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		if !strings.HasSuffix(lineProtocol, "\n") {
			lineProtocol += "\n"
		}
		if _, err := b.backupWriter.Write([]byte(lineProtocol)); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
		}
	}
	return b.backupWriter.Flush()
}

// Close flushes the backup file and closes the client.
func (b *Backend) Close() error {
	var err error
	if b.backupWriter != nil {
		err = b.backupWriter.Close()
		if cerr := b.backupFile.Close(); err == nil {
			err = cerr
		}
		b.backupWriter = nil
	}
	if b.client != nil {
		b.client.Close()
	}
	return err
}
