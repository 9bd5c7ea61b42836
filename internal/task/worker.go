// Package task orchestrates one search-and-copy task: it sequences the
// search phase, an optional operator confirmation for large result sets, and
// the deduplicating copy phase, emitting lifecycle events throughout and
// honoring cooperative cancellation.
//
// Exactly one Complete event is emitted per task invocation regardless of
// the path taken (no keywords, no results, declined confirmation, stop
// during either phase, normal completion, or fatal error). Downstream
// consumers rely on that contract to re-enable their controls.
package task

import (
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/filescout/internal/cancel"
	"github.com/harrison/filescout/internal/copier"
	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/keyword"
	"github.com/harrison/filescout/internal/search"
)

// DefaultConfirmThreshold is the match count above which the worker suspends
// and asks the operator before copying.
const DefaultConfirmThreshold = 20

// Options configures a Worker.
type Options struct {
	// Extensions is the closed set of target file extensions.
	Extensions []string
	// PatternVocabulary is the closed set of recognized pattern keywords.
	PatternVocabulary []string
	// ConfirmThreshold is the match count above which confirmation is
	// requested; zero selects DefaultConfirmThreshold.
	ConfirmThreshold int
}

// Handoff is the contract exposed to the document-ingestion subsystem after
// a task: where the copies landed and which keywords drove the run.
type Handoff struct {
	DestinationFolder string
	Keywords          []string
}

// Outcome labels for a finished task.
const (
	OutcomeCompleted  = "completed"
	OutcomeStopped    = "stopped"
	OutcomeFailed     = "failed"
	OutcomeNoResults  = "no-results"
	OutcomeNoKeywords = "no-keywords"
)

// Summary describes the most recent task for reporting and history.
type Summary struct {
	TaskID      string
	StartedAt   time.Time
	Matched     int
	FilesCopied int
	Duration    time.Duration
	Outcome     string
}

// Worker executes one task at a time. Callers must not start a second task
// while one is still running; serialization is the caller's responsibility.
type Worker struct {
	sink      events.Sink
	opts      Options
	token     *cancel.Token
	completed bool
	handoff   Handoff
	taskID    uuid.UUID
	summary   Summary
}

// New creates a Worker emitting all events to sink.
func New(sink events.Sink, opts Options) *Worker {
	if opts.ConfirmThreshold <= 0 {
		opts.ConfirmThreshold = DefaultConfirmThreshold
	}
	if len(opts.PatternVocabulary) == 0 {
		opts.PatternVocabulary = keyword.DefaultPatternVocabulary
	}
	return &Worker{
		sink:  sink,
		opts:  opts,
		token: cancel.NewToken(),
	}
}

// Stop requests cooperative cancellation of the running task. Idempotent;
// the effect is observed at the next poll point.
func (w *Worker) Stop() {
	w.token.Stop()
}

// Handoff returns the ingestion handoff for the most recent task.
func (w *Worker) Handoff() Handoff {
	return w.handoff
}

// Summary returns the outcome record of the most recent task. Valid once
// the completion event has been emitted.
func (w *Worker) Summary() Summary {
	return w.summary
}

// Start runs the task on a background goroutine and returns immediately.
// Events arrive on the sink from that goroutine.
func (w *Worker) Start(sourceFolders, keywords []string, destinationFolder string) {
	go w.Run(sourceFolders, keywords, destinationFolder)
}

// Run executes the task synchronously. When the result set exceeds the
// confirmation threshold, Run returns after emitting the confirmation
// request; the copy phase then executes inside Decision.Resume.
func (w *Worker) Run(sourceFolders, keywords []string, destinationFolder string) {
	w.token.Reset()
	w.completed = false
	w.taskID = uuid.New()
	w.handoff = Handoff{DestinationFolder: destinationFolder, Keywords: keywords}
	w.summary = Summary{TaskID: w.taskID.String(), StartedAt: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			w.fail(fmt.Sprintf("critical task error: %v", r), string(debug.Stack()))
		}
	}()

	w.sink.Status("Searching...")
	w.sink.Log(fmt.Sprintf("--- Start copy task %s ---", w.taskID), events.SeverityHeader)
	w.sink.Log(fmt.Sprintf("Keywords: %s", strings.Join(keywords, ", ")), events.SeverityDetail)

	roots := make([]string, len(sourceFolders))
	for i, p := range sourceFolders {
		roots[i] = filepath.Clean(p)
	}
	w.sink.Log(fmt.Sprintf("Source folders: %s", strings.Join(roots, ", ")), events.SeverityDetail)
	w.sink.Log(fmt.Sprintf("Destination: %s", destinationFolder), events.SeverityDetail)
	w.sink.Progress(0)

	params := keyword.Parse(keywords, w.opts.PatternVocabulary)
	if params.Empty() {
		w.sink.Log("No valid keywords provided.", events.SeverityError)
		w.sink.Status("No valid keywords.")
		w.summary.Outcome = OutcomeNoKeywords
		w.finish(0, 0)
		return
	}
	w.sink.Log(fmt.Sprintf("Pattern keywords: %v", params.Patterns), events.SeverityDetail)
	w.sink.Log(fmt.Sprintf("Number keywords: %v", params.Numbers), events.SeverityDetail)

	searchStart := time.Now()
	index, matches := search.Run(search.Options{
		Roots:      roots,
		Extensions: w.opts.Extensions,
		Params:     params,
	}, w.token, w.sink.Log)
	w.sink.Log(fmt.Sprintf("Search phase took %.2f seconds.", time.Since(searchStart).Seconds()), events.SeverityDetail)

	if !w.token.Running() {
		w.sink.Log("Copy task stopped during search.", events.SeverityError)
		w.summary.Outcome = OutcomeStopped
		w.finish(0, 0)
		return
	}

	groups := w.relabel(index, params)
	total := search.Total(groups)
	w.summary.Matched = total
	w.logSummary(matches, total)

	if total == 0 {
		w.sink.Status("Nothing found.")
		w.summary.Outcome = OutcomeNoResults
		w.finish(0, 0)
		return
	}
	w.sink.Status(fmt.Sprintf("Found %d files.", total))

	if total > w.opts.ConfirmThreshold {
		w.sink.Log(fmt.Sprintf("Waiting for confirmation (%d files)...", total), events.SeverityWarn)
		w.sink.Confirm(total, newDecision(w, groups, destinationFolder, total))
		return
	}

	w.sink.Log(fmt.Sprintf("Found %d or fewer files, proceeding directly.", w.opts.ConfirmThreshold), events.SeverityDetail)
	w.startCopy(groups, destinationFolder, total)
}

// relabel maps canonical match keys back to the user's original keyword
// spelling for group labels, then fixes the deterministic consumption order.
func (w *Worker) relabel(index map[string][]search.FileRef, params keyword.Params) []search.Group {
	relabelled := make(map[string][]search.FileRef, len(index))
	for key, files := range index {
		label, ok := params.Display(key)
		if !ok {
			w.sink.Log(fmt.Sprintf("Could not map found keyword %q back to user input.", key), events.SeverityWarn)
			label = "UNKNOWN_MAP_" + key
		}
		relabelled[label] = append(relabelled[label], files...)
	}
	return search.Sorted(relabelled)
}

// logSummary streams the found-files listing in sorted path order.
func (w *Worker) logSummary(matches []search.Match, total int) {
	if total == 0 {
		w.sink.Log("--- Search found 0 files ---", events.SeverityDetail)
		return
	}
	w.sink.Log(fmt.Sprintf("--- Search found %d files ---", total), events.SeverityHeader)

	sorted := make([]search.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, m := range sorted {
		provenance := "from source root"
		if m.LastFolder != "" {
			provenance = fmt.Sprintf("from folder %q", m.LastFolder)
		}
		w.sink.Log(fmt.Sprintf("  - %s (%s) (rule: %s, ext: %s, num: %s)",
			filepath.Base(m.Path), provenance, m.Key, m.Ext, m.Number), events.SeverityFound)
	}
}

// startCopy runs the copy phase and emits the terminal events for the
// done/stopped outcomes.
func (w *Worker) startCopy(groups []search.Group, destinationFolder string, total int) {
	if !w.token.Running() {
		w.sink.Log("Copy cancelled before the copy phase could start.", events.SeverityError)
		w.summary.Outcome = OutcomeStopped
		w.finish(0, 0)
		return
	}

	copied, duration := copier.New(w.sink, w.token).Copy(groups, destinationFolder, total)

	if w.token.Running() {
		status := fmt.Sprintf("Copy complete: copied %d files.", copied)
		w.sink.Status(status)
		w.sink.Log(fmt.Sprintf("Copying phase took %.2f seconds.", duration.Seconds()), events.SeverityDetail)
		w.sink.Log(fmt.Sprintf("--- Copy finished (%s) ---", status), events.SeverityHeader)
		w.summary.Outcome = OutcomeCompleted
		w.complete(copied, 0, duration)
		w.sink.Progress(100)
	} else {
		w.sink.Log("Copy task stopped during the copy phase.", events.SeverityError)
		w.summary.Outcome = OutcomeStopped
		w.complete(copied, 0, duration)
	}
	w.token.Stop()
}

// finish emits a zero-result completion and parks the token.
func (w *Worker) finish(files int, duration time.Duration) {
	w.complete(files, 0, duration)
	w.token.Stop()
}

// complete emits the completion event, guarding the exactly-once contract.
func (w *Worker) complete(files, dirs int, duration time.Duration) {
	if w.completed {
		return
	}
	w.completed = true
	w.summary.FilesCopied = files
	w.summary.Duration = duration
	w.sink.Complete(events.Completion{FilesCopied: files, DirsCopied: dirs, Duration: duration})
}

// fail handles the task-fatal path: short message to the error event, full
// diagnostic detail to the log, and the completion event the contract owes.
func (w *Worker) fail(message, detail string) {
	w.sink.Status("Copy error!")
	w.sink.Log("--- Copy task failed ---", events.SeverityError)
	w.sink.Log(message, events.SeverityError)
	if detail != "" {
		w.sink.Log(detail, events.SeverityError)
	}
	w.sink.Error(message + " (see log for details)")
	w.summary.Outcome = OutcomeFailed
	w.finish(0, 0)
}
