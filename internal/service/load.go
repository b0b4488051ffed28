package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"flatfile/internal/config"
	"flatfile/internal/destinations"
	"flatfile/internal/record"
	"flatfile/internal/record/construct"
	"flatfile/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Loader — business logic for file load jobs
// ─────────────────────────────────────────────────────────────

// Loader runs load jobs: parse a job's input file into records and
// write them to its destination. Run history is stored when a run log
// store is attached.
type Loader struct {
	logs        *storage.RunLogStore
	runningJobs runningJobsGuard

	// watcher / cron lifecycle
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewLoader creates a Loader. logs may be nil to skip run history.
func NewLoader(logs *storage.RunLogStore) *Loader {
	return &Loader{logs: logs}
}

// RunResult reports the outcome of one job run.
type RunResult struct {
	Status         string        `json:"status"`
	RecordsRead    int           `json:"recordsRead"`
	RecordsWritten int           `json:"recordsWritten"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes a single load job synchronously.
func (s *Loader) RunJob(ctx context.Context, job *config.Job) (*RunResult, error) {
	// Prevent concurrent execution of the same job.
	if !s.runningJobs.TryLock(job.Name) {
		return nil, fmt.Errorf("job %s is already running", job.Name)
	}
	defer s.runningJobs.Unlock(job.Name)

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	result, runErr := s.run(runCtx, job)
	result.Duration = time.Since(start)

	if s.logs != nil {
		runLog := &storage.RunLog{
			Job:            job.Name,
			StartedAt:      start,
			FinishedAt:     time.Now(),
			Status:         result.Status,
			RecordsRead:    result.RecordsRead,
			RecordsWritten: result.RecordsWritten,
			Error:          result.Error,
		}
		if err := s.logs.Create(runLog); err != nil {
			log.Printf("load: failed to store run log for job %s: %v", job.Name, err)
		}
	}

	if runErr != nil {
		log.Printf("load: job %s failed after %s: %v",
			job.Name, result.Duration.Round(time.Millisecond), runErr)
	} else {
		log.Printf("load: job %s wrote %d/%d records in %s",
			job.Name, result.RecordsWritten, result.RecordsRead, result.Duration.Round(time.Millisecond))
	}

	return result, runErr
}

func (s *Loader) run(ctx context.Context, job *config.Job) (*RunResult, error) {
	result := &RunResult{Status: storage.StatusError}
	fail := func(err error) (*RunResult, error) {
		result.Error = err.Error()
		return result, err
	}

	// 1. Declare the job's record type on a fresh registry. Each run gets
	//    its own registry so re-triggered jobs never collide on the type name.
	reg := record.NewRegistry()
	if err := construct.Register(reg); err != nil {
		return fail(err)
	}
	schema, err := job.Declare(reg)
	if err != nil {
		return fail(err)
	}

	// 2. Parse the input file.
	records, err := record.NewEngine(reg).ParseFile(job.Record.Type, job.Input)
	if err != nil {
		return fail(err)
	}
	result.RecordsRead = len(records)

	// 3. Write to the destination.
	dest, err := destinations.Open(job.Destination, job.Columns)
	if err != nil {
		return fail(err)
	}
	defer dest.Close()

	written, err := dest.Write(ctx, schema, records, destinations.Mode(job.Mode))
	result.RecordsWritten = written
	if err != nil {
		return fail(err)
	}

	result.Status = storage.StatusSuccess
	return result, nil
}

// ── Preview ────────────────────────────────────────────────

// Preview parses the job's input and returns up to limit records
// without touching the destination.
func (s *Loader) Preview(job *config.Job, limit int) ([]*record.Record, error) {
	reg := record.NewRegistry()
	if err := construct.Register(reg); err != nil {
		return nil, err
	}
	if _, err := job.Declare(reg); err != nil {
		return nil, err
	}

	records, err := record.NewEngine(reg).ParseFile(job.Record.Type, job.Input)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ── Run history ────────────────────────────────────────────

// ListRunLogs returns the last 50 runs of a job, newest first.
func (s *Loader) ListRunLogs(job string) ([]storage.RunLog, error) {
	if s.logs == nil {
		return nil, nil
	}
	return s.logs.ListByJob(job, 50)
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *Loader) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}
