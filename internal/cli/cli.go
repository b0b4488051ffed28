package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flatfile/internal/config"
	"flatfile/internal/record"
	"flatfile/internal/record/construct"
	"flatfile/internal/service"
	"flatfile/internal/storage"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const rootUsage = `flatfile - declarative flat file loader

Usage:
  flatfile <command> [options]

Commands:
  run      Run load jobs once and exit.
  watch    Keep running, triggering jobs on schedules and file changes.
  preview  Parse a job's input and print records without writing.
  parse    Parse lines against an ad-hoc record type.

Run 'flatfile <command> -h' for command options.
`

// Run dispatches the subcommand in args. Output meant for the user goes
// to out; diagnostics go through the log package.
func Run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, rootUsage)
		return &ExitError{Code: 2, Message: "missing command"}
	}

	switch args[0] {
	case "run":
		return runCmd(args[1:], out)
	case "watch":
		return watchCmd(args[1:], out)
	case "preview":
		return previewCmd(args[1:], out)
	case "parse":
		return parseCmd(args[1:], out)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(out, rootUsage)
		return nil
	default:
		fmt.Fprint(out, rootUsage)
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", args[0])}
	}
}

// ── run ────────────────────────────────────────────────────

func runCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("flatfile run", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
Run load jobs once and exit.

Usage:
  flatfile run [options] JOB_FILE...

Options:
`)
		fs.PrintDefaults()
	}
	dirFlag := fs.String("dir", "", "Run every job file in this directory instead of JOB_FILE arguments.")
	stateFlag := fs.String("state", "", "SQLite file for run history. Empty disables history.")
	quietFlag := fs.Bool("quiet", false, "Suppress progress logging.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if *quietFlag {
		log.SetOutput(io.Discard)
	}

	jobs, err := collectJobs(*dirFlag, fs.Args())
	if err != nil {
		return err
	}

	loader, closeStore, err := newLoader(*stateFlag)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	failed := 0
	for _, job := range jobs {
		result, err := loader.RunJob(ctx, job)
		if err != nil {
			failed++
			// result is nil when the already-running guard rejects the job.
			if result != nil {
				fmt.Fprintf(out, "%s: %s (%v)\n", job.Name, result.Status, err)
			} else {
				fmt.Fprintf(out, "%s: %v\n", job.Name, err)
			}
			continue
		}
		fmt.Fprintf(out, "%s: %s, %d/%d records in %s\n",
			job.Name, result.Status, result.RecordsWritten, result.RecordsRead,
			result.Duration.Round(time.Millisecond))
	}
	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d job(s) failed", failed)}
	}
	return nil
}

// ── watch ──────────────────────────────────────────────────

func watchCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("flatfile watch", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
Keep running, triggering jobs on their schedules and file changes.

Usage:
  flatfile watch [options] JOB_FILE...

Options:
`)
		fs.PrintDefaults()
	}
	dirFlag := fs.String("dir", "", "Watch every job file in this directory instead of JOB_FILE arguments.")
	stateFlag := fs.String("state", "", "SQLite file for run history. Empty disables history.")
	quietFlag := fs.Bool("quiet", false, "Suppress progress logging.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if *quietFlag {
		log.SetOutput(io.Discard)
	}

	jobs, err := collectJobs(*dirFlag, fs.Args())
	if err != nil {
		return err
	}

	loader, closeStore, err := newLoader(*stateFlag)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loader.StartWatchers(ctx, jobs)
	fmt.Fprintf(out, "watching %d job(s), interrupt to stop\n", len(jobs))

	<-ctx.Done()

	// Stop taking new triggers, then let in-flight runs wind down.
	loader.Stop()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer waitCancel()
	loader.WaitRunning(waitCtx)

	return nil
}

// ── preview ────────────────────────────────────────────────

func previewCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("flatfile preview", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
Parse a job's input and print records as JSON, one per line, without
writing to the destination.

Usage:
  flatfile preview [options] JOB_FILE

Options:
`)
		fs.PrintDefaults()
	}
	nFlag := fs.Int("n", 10, "Maximum number of records to print. 0 prints all.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "preview takes exactly one job file"}
	}

	job, err := config.LoadJob(fs.Arg(0))
	if err != nil {
		return err
	}

	records, err := service.NewLoader(nil).Preview(job, *nFlag)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// ── parse ──────────────────────────────────────────────────

func parseCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("flatfile parse", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
Parse lines from a file (or stdin) against an ad-hoc record type and
print records as JSON, one per line.

Usage:
  flatfile parse -fields "first,last,age=Int" [options] [FILE]

Options:
`)
		fs.PrintDefaults()
	}
	typeFlag := fs.String("type", "Record", "Record type name.")
	fieldsFlag := fs.String("fields", "", "Comma-separated field declarations, e.g. \"first,last,age=Int\".")
	delimFlag := fs.String("delim", ":", "Column delimiter.")
	patternFlag := fs.String("pattern", "", "Split on a regular expression instead of a delimiter.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if *fieldsFlag == "" {
		fs.Usage()
		return &ExitError{Code: 2, Message: "parse needs -fields"}
	}

	reg := record.NewRegistry()
	if err := construct.Register(reg); err != nil {
		return err
	}
	s, err := reg.Declare(*typeFlag, splitFields(*fieldsFlag)...)
	if err != nil {
		return err
	}
	switch {
	case *patternFlag != "":
		sp, err := record.NewPattern(*patternFlag)
		if err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
		s.SetSplitter(sp)
	case *delimFlag != "":
		s.SetSplitter(record.Delim(*delimFlag))
	}

	var src io.Reader = os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	records, err := record.NewEngine(reg).ParseStream(*typeFlag, src)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// ── helpers ────────────────────────────────────────────────

func collectJobs(dir string, files []string) ([]*config.Job, error) {
	if dir != "" {
		jobs, err := config.LoadJobs(dir)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("no job files in %s", dir)}
		}
		return jobs, nil
	}
	if len(files) == 0 {
		return nil, &ExitError{Code: 2, Message: "no job files given"}
	}
	var jobs []*config.Job
	for _, f := range files {
		job, err := config.LoadJob(f)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func splitFields(s string) []string {
	return strings.Split(s, ",")
}

func newLoader(statePath string) (*service.Loader, func(), error) {
	if statePath == "" {
		return service.NewLoader(nil), func() {}, nil
	}
	db, err := storage.Open(statePath)
	if err != nil {
		return nil, nil, err
	}
	return service.NewLoader(storage.NewRunLogStore(db)), func() { db.Close() }, nil
}
