package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
	"github.com/speedwagon-io/speedbot/internal/model"
)

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store interface {
	Save(ctx context.Context, run *model.Run) error
	Recent(ctx context.Context, limit int) ([]*model.Run, error)
	Close() error
}

type SQLiteStore struct {
	log *slog.Logger
	db  *sql.DB
}

func NewSQLiteStore(log *slog.Logger, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{
		log: log,
		db:  db,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			hostname TEXT,
			ipv4 TEXT,
			uptime TEXT,
			server_name TEXT NOT NULL,
			server_country TEXT NOT NULL,
			latency_ms REAL NOT NULL,
			download_mbps REAL NOT NULL,
			upload_mbps REAL NOT NULL,
			packet_loss REAL NOT NULL DEFAULT 0,
			result_url TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, run *model.Run) error {
	query := `
		INSERT INTO runs (id, timestamp, hostname, ipv4, uptime, server_name, server_country,
			latency_ms, download_mbps, upload_mbps, packet_loss, result_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	m := run.Measurement
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Timestamp.UTC().Format(timeLayout),
		run.Host.Hostname,
		run.Host.IPv4,
		run.Host.Uptime,
		m.ServerName,
		m.ServerCountry,
		m.LatencyMs,
		m.DownloadMbps,
		m.UploadMbps,
		m.PacketLoss,
		m.ResultURL,
	)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	s.log.Debug("run stored in history", slog.String("id", run.ID))
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*model.Run, error) {
	query := `
		SELECT id, timestamp, hostname, ipv4, uptime, server_name, server_country,
			latency_ms, download_mbps, upload_mbps, packet_loss, result_url
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var (
			run          model.Run
			timestampStr string
		)

		if err := rows.Scan(
			&run.ID, &timestampStr,
			&run.Host.Hostname, &run.Host.IPv4, &run.Host.Uptime,
			&run.Measurement.ServerName, &run.Measurement.ServerCountry,
			&run.Measurement.LatencyMs, &run.Measurement.DownloadMbps, &run.Measurement.UploadMbps,
			&run.Measurement.PacketLoss, &run.Measurement.ResultURL,
		); err != nil {
			s.log.Error("failed to scan row", sl.Err(err))
			continue
		}

		run.Timestamp, err = time.Parse(timeLayout, timestampStr)
		if err != nil {
			s.log.Error("failed to parse timestamp", sl.Err(err))
			continue
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
