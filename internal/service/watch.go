package service

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"flatfile/internal/config"
)

// ─────────────────────────────────────────────────────────────
// Watchers — cron and file-watch triggers
// ─────────────────────────────────────────────────────────────

// StartWatchers builds the cron scheduler and file watcher for every job
// with a schedule or file_watch trigger. Manual jobs are ignored.
func (s *Loader) StartWatchers(ctx context.Context, jobs []*config.Job) {
	s.stopWatchers()

	// ── Cron jobs ──
	var cronJobs []*config.Job
	for _, j := range jobs {
		if j.Trigger.Type == config.TriggerSchedule {
			cronJobs = append(cronJobs, j)
		}
	}

	if len(cronJobs) > 0 {
		c := cron.New()
		for _, cj := range cronJobs {
			job := cj
			_, err := c.AddFunc(job.Trigger.Config, func() {
				log.Printf("load cron: running job %s", job.Name)
				if _, err := s.RunJob(ctx, job); err != nil {
					log.Printf("load cron: job %s failed: %v", job.Name, err)
				}
			})
			if err != nil {
				log.Printf("load cron: invalid expression %q for job %s: %v",
					job.Trigger.Config, job.Name, err)
			}
		}
		c.Start()
		s.cronSched = c
		log.Printf("load cron: scheduled %d job(s)", len(cronJobs))
	}

	// ── File watchers ──
	var watched []*config.Job
	for _, j := range jobs {
		if j.Trigger.Type == config.TriggerFileWatch {
			watched = append(watched, j)
		}
	}

	if len(watched) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("load watcher: failed to create watcher: %v", err)
		return
	}
	s.watcher = watcher

	pathToJob := make(map[string]*config.Job)
	watchedDirs := make(map[string]bool)
	for _, j := range watched {
		absPath, err := filepath.Abs(j.Trigger.Config)
		if err != nil {
			log.Printf("load watcher: bad path %q: %v", j.Trigger.Config, err)
			continue
		}
		pathToJob[absPath] = j

		// Watch the parent directory; editors replace files rather than
		// write them in place.
		dir := filepath.Dir(absPath)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				log.Printf("load watcher: failed to watch dir %q: %v", dir, err)
			} else {
				watchedDirs[dir] = true
			}
		}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	go func() {
		timers := make(map[string]*time.Timer)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				absPath, _ := filepath.Abs(event.Name)
				job, ok := pathToJob[absPath]
				if !ok {
					continue
				}
				if t, exists := timers[job.Name]; exists {
					t.Stop()
				}
				j := job
				timers[job.Name] = time.AfterFunc(500*time.Millisecond, func() {
					log.Printf("load watcher: file changed %q, running job %s", absPath, j.Name)
					if _, err := s.RunJob(ctx, j); err != nil {
						log.Printf("load watcher: run failed for job %s: %v", j.Name, err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("load watcher: error: %v", err)
			}
		}
	}()

	log.Printf("load watcher: watching %d file(s)", len(pathToJob))
}

// Stop tears down all watchers and schedulers.
func (s *Loader) Stop() {
	s.stopWatchers()
}

func (s *Loader) stopWatchers() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
