package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"flatfile/internal/record"
)

// ── Job configuration ───────────────────────────────────────
// Declarative load jobs: a record type, an input file and a destination,
// plus an optional trigger for unattended runs.

const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"
	TriggerFileWatch = "file_watch"
)

// Job describes one file-to-destination load.
type Job struct {
	Name        string          `yaml:"name"`
	Record      RecordConfig    `yaml:"record"`
	Input       string          `yaml:"input"`
	Columns     []ColumnMapping `yaml:"columns,omitempty"`
	Destination DestConfig      `yaml:"destination"`
	Mode        string          `yaml:"mode,omitempty"`
	Trigger     TriggerConfig   `yaml:"trigger,omitempty"`
}

// RecordConfig declares the record type a job parses lines into.
// Fields use the declaration syntax: "name", "name=Type", "name=Type=Func".
type RecordConfig struct {
	Type      string   `yaml:"type"`
	Fields    []string `yaml:"fields"`
	Delimiter string   `yaml:"delimiter,omitempty"` // literal
	Pattern   string   `yaml:"pattern,omitempty"`   // regular expression
}

// ColumnMapping projects a record field onto a destination column.
type ColumnMapping struct {
	Field  string `yaml:"field"`
	Column string `yaml:"column,omitempty"` // defaults to the field name
}

// DestConfig selects and configures a destination driver.
type DestConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" | "mysql" | "postgres" | "mongodb" | "webhook"
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"` // postgres only
	URL      string `yaml:"url,omitempty"`     // webhook endpoint
	Table    string `yaml:"table"`             // table, collection or payload tag
}

// TriggerConfig schedules unattended runs.
type TriggerConfig struct {
	Type   string `yaml:"type,omitempty"`   // "manual" | "schedule" | "file_watch"
	Config string `yaml:"config,omitempty"` // cron expression or watched path
}

// LoadJob reads and validates one job file. The job's input path is
// resolved relative to the job file when not absolute.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	job.applyDefaults()
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	if job.Input != "" && !filepath.IsAbs(job.Input) {
		job.Input = filepath.Join(filepath.Dir(path), job.Input)
	}
	return &job, nil
}

// LoadJobs reads every *.yaml / *.yml job in dir, in file-name order.
func LoadJobs(dir string) ([]*Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read job dir: %w", err)
	}
	var jobs []*Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}
		job, err := LoadJob(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (j *Job) applyDefaults() {
	if j.Mode == "" {
		j.Mode = ModeReplace
	}
	if j.Trigger.Type == "" {
		j.Trigger.Type = TriggerManual
	}
}

// Validate checks the job invariants.
func (j *Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("job must have a name")
	}
	if j.Record.Type == "" {
		return fmt.Errorf("job %s: record type is required", j.Name)
	}
	if len(j.Record.Fields) == 0 {
		return fmt.Errorf("job %s: record fields are required", j.Name)
	}
	if j.Record.Delimiter != "" && j.Record.Pattern != "" {
		return fmt.Errorf("job %s: delimiter and pattern are mutually exclusive", j.Name)
	}
	if j.Input == "" {
		return fmt.Errorf("job %s: input file is required", j.Name)
	}
	if j.Destination.Driver == "" {
		return fmt.Errorf("job %s: destination driver is required", j.Name)
	}
	if j.Destination.Table == "" {
		return fmt.Errorf("job %s: destination table is required", j.Name)
	}
	switch j.Mode {
	case ModeReplace, ModeAppend:
	default:
		return fmt.Errorf("job %s: unknown mode %q", j.Name, j.Mode)
	}
	switch j.Trigger.Type {
	case TriggerManual:
	case TriggerSchedule, TriggerFileWatch:
		if j.Trigger.Config == "" {
			return fmt.Errorf("job %s: trigger %s needs a config value", j.Name, j.Trigger.Type)
		}
	default:
		return fmt.Errorf("job %s: unknown trigger type %q", j.Name, j.Trigger.Type)
	}
	for _, cm := range j.Columns {
		if cm.Field == "" {
			return fmt.Errorf("job %s: column mapping needs a field", j.Name)
		}
	}
	return nil
}

// Declare registers the job's record type on reg and applies its
// delimiter or split pattern.
func (j *Job) Declare(reg *record.Registry) (*record.Schema, error) {
	s, err := reg.Declare(j.Record.Type, j.Record.Fields...)
	if err != nil {
		return nil, err
	}
	switch {
	case j.Record.Pattern != "":
		sp, err := record.NewPattern(j.Record.Pattern)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		s.SetSplitter(sp)
	case j.Record.Delimiter != "":
		s.SetSplitter(record.Delim(j.Record.Delimiter))
	}
	return s, nil
}
