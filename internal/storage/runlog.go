package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunLog is the stored outcome of one job run.
type RunLog struct {
	ID             string
	Job            string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         string
	RecordsRead    int
	RecordsWritten int
	Error          string
}

// RunLogStore persists job run history.
type RunLogStore struct {
	db *DB
}

// NewRunLogStore creates a run log store backed by db.
func NewRunLogStore(db *DB) *RunLogStore {
	return &RunLogStore{db: db}
}

// Create inserts a run log, assigning it a fresh ID.
func (s *RunLogStore) Create(l *RunLog) error {
	l.ID = uuid.New().String()

	_, err := s.db.conn.Exec(`
		INSERT INTO run_logs (id, job, started_at, finished_at, status, records_read, records_written, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Job, l.StartedAt, l.FinishedAt, l.Status, l.RecordsRead, l.RecordsWritten, l.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}

	return nil
}

// ListByJob returns the most recent runs for a job, newest first.
func (s *RunLogStore) ListByJob(job string, limit int) ([]RunLog, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, job, started_at, finished_at, status, records_read, records_written, error
		FROM run_logs
		WHERE job = ?
		ORDER BY started_at DESC
		LIMIT ?`,
		job, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query run logs: %w", err)
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		var l RunLog
		if err := rows.Scan(&l.ID, &l.Job, &l.StartedAt, &l.FinishedAt, &l.Status,
			&l.RecordsRead, &l.RecordsWritten, &l.Error); err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
