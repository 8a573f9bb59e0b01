package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hostwatch/internal/metrics"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sql.DB { return r.db }

// CPUPoint is one stored CPU row; Memory and Disk points follow the same
// shape. The embedded snapshot flattens into the JSON the HTTP layer
// serves.
type CPUPoint struct {
	Timestamp time.Time `json:"timestamp"`
	metrics.CPUMetrics
}

type MemoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	metrics.MemoryMetrics
}

type DiskPoint struct {
	Timestamp time.Time `json:"timestamp"`
	metrics.DiskMetrics
}

// Insert appends a timestamped row to the snapshot's category table.
func (r *Repository) Insert(ctx context.Context, at time.Time, snap metrics.Snapshot) error {
	switch m := snap.(type) {
	case metrics.CPUMetrics:
		return r.InsertCPU(ctx, at, m)
	case metrics.MemoryMetrics:
		return r.InsertMemory(ctx, at, m)
	case metrics.DiskMetrics:
		return r.InsertDisk(ctx, at, m)
	}
	return fmt.Errorf("unknown snapshot type %T", snap)
}

func (r *Repository) InsertCPU(ctx context.Context, at time.Time, m metrics.CPUMetrics) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO cpu_metrics
		(ts,usage_percentage,load_average_1m,load_average_5m,load_average_15m)
		VALUES (?,?,?,?,?)`,
		at.UTC(), m.UsagePercentage, m.LoadAverage[0], m.LoadAverage[1], m.LoadAverage[2])
	return err
}

func (r *Repository) InsertMemory(ctx context.Context, at time.Time, m metrics.MemoryMetrics) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO mem_metrics
		(ts,total,used,swap_total,swap_used)
		VALUES (?,?,?,?,?)`,
		at.UTC(), m.Total, m.Used, m.SwapTotal, m.SwapUsed)
	return err
}

func (r *Repository) InsertDisk(ctx context.Context, at time.Time, m metrics.DiskMetrics) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO disk_metrics (ts,total,free) VALUES (?,?,?)`,
		at.UTC(), m.Total, m.Free)
	return err
}

// Latest returns the most recent snapshot of a category, or the category's
// zero value when its table is still empty.
func (r *Repository) Latest(ctx context.Context, c metrics.Category) (metrics.Snapshot, error) {
	switch c {
	case metrics.CategoryCPU:
		return r.LatestCPU(ctx)
	case metrics.CategoryMemory:
		return r.LatestMemory(ctx)
	case metrics.CategoryDisk:
		return r.LatestDisk(ctx)
	}
	return nil, fmt.Errorf("unknown metric category %q", c)
}

func (r *Repository) LatestCPU(ctx context.Context) (metrics.CPUMetrics, error) {
	var m metrics.CPUMetrics
	err := r.db.QueryRowContext(ctx, `SELECT usage_percentage,load_average_1m,load_average_5m,load_average_15m
		FROM cpu_metrics ORDER BY ts DESC LIMIT 1`).
		Scan(&m.UsagePercentage, &m.LoadAverage[0], &m.LoadAverage[1], &m.LoadAverage[2])
	if err == sql.ErrNoRows {
		return metrics.CPUMetrics{}, nil
	}
	return m, err
}

func (r *Repository) LatestMemory(ctx context.Context) (metrics.MemoryMetrics, error) {
	var total, used, swapTotal, swapUsed uint32
	err := r.db.QueryRowContext(ctx, `SELECT total,used,swap_total,swap_used
		FROM mem_metrics ORDER BY ts DESC LIMIT 1`).
		Scan(&total, &used, &swapTotal, &swapUsed)
	if err == sql.ErrNoRows {
		return metrics.MemoryMetrics{}, nil
	}
	if err != nil {
		return metrics.MemoryMetrics{}, err
	}
	return metrics.NewMemoryMetrics(total, used, swapTotal, swapUsed), nil
}

func (r *Repository) LatestDisk(ctx context.Context) (metrics.DiskMetrics, error) {
	var total, free uint32
	err := r.db.QueryRowContext(ctx, `SELECT total,free FROM disk_metrics ORDER BY ts DESC LIMIT 1`).
		Scan(&total, &free)
	if err == sql.ErrNoRows {
		return metrics.DiskMetrics{}, nil
	}
	if err != nil {
		return metrics.DiskMetrics{}, err
	}
	return metrics.NewDiskMetrics(total, free), nil
}

func (r *Repository) CPUHistory(ctx context.Context, start, end time.Time) ([]CPUPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ts,usage_percentage,load_average_1m,load_average_5m,load_average_15m
		FROM cpu_metrics WHERE ts >= ? AND ts <= ? ORDER BY ts ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CPUPoint
	for rows.Next() {
		var p CPUPoint
		if err := rows.Scan(&p.Timestamp, &p.UsagePercentage, &p.LoadAverage[0], &p.LoadAverage[1], &p.LoadAverage[2]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) MemoryHistory(ctx context.Context, start, end time.Time) ([]MemoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ts,total,used,swap_total,swap_used
		FROM mem_metrics WHERE ts >= ? AND ts <= ? ORDER BY ts ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MemoryPoint
	for rows.Next() {
		var ts time.Time
		var total, used, swapTotal, swapUsed uint32
		if err := rows.Scan(&ts, &total, &used, &swapTotal, &swapUsed); err != nil {
			return nil, err
		}
		out = append(out, MemoryPoint{Timestamp: ts, MemoryMetrics: metrics.NewMemoryMetrics(total, used, swapTotal, swapUsed)})
	}
	return out, rows.Err()
}

func (r *Repository) DiskHistory(ctx context.Context, start, end time.Time) ([]DiskPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ts,total,free
		FROM disk_metrics WHERE ts >= ? AND ts <= ? ORDER BY ts ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DiskPoint
	for rows.Next() {
		var ts time.Time
		var total, free uint32
		if err := rows.Scan(&ts, &total, &free); err != nil {
			return nil, err
		}
		out = append(out, DiskPoint{Timestamp: ts, DiskMetrics: metrics.NewDiskMetrics(total, free)})
	}
	return out, rows.Err()
}

// CPUSince returns raw CPU rows newer than the given instant, ascending.
// The collector feeds these into its rolling load averages.
func (r *Repository) CPUSince(ctx context.Context, since time.Time) ([]CPUPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ts,usage_percentage,load_average_1m,load_average_5m,load_average_15m
		FROM cpu_metrics WHERE ts > ? ORDER BY ts ASC`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CPUPoint
	for rows.Next() {
		var p CPUPoint
		if err := rows.Scan(&p.Timestamp, &p.UsagePercentage, &p.LoadAverage[0], &p.LoadAverage[1], &p.LoadAverage[2]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes rows older than the cutoff from every metric
// table. Used by the nightly retention sweep.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	queries := []string{
		`DELETE FROM cpu_metrics WHERE ts < ?`,
		`DELETE FROM mem_metrics WHERE ts < ?`,
		`DELETE FROM disk_metrics WHERE ts < ?`,
	}
	for _, q := range queries {
		if _, err := r.db.ExecContext(ctx, q, cutoff.UTC()); err != nil {
			return err
		}
	}
	_, _ = r.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`)
	return nil
}
