package task

import (
	"sync"

	"github.com/google/uuid"

	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/search"
)

// Decision is the suspended-task continuation carried by a confirmation
// request. It captures everything needed to resume the copy phase so no
// closure over mutable worker state is required. Resume must be called at
// most once; later calls are ignored.
type Decision struct {
	id     uuid.UUID
	once   sync.Once
	worker *Worker
	groups []search.Group
	dest   string
	total  int
}

func newDecision(w *Worker, groups []search.Group, dest string, total int) *Decision {
	return &Decision{
		id:     uuid.New(),
		worker: w,
		groups: groups,
		dest:   dest,
		total:  total,
	}
}

// ID identifies this confirmation request.
func (d *Decision) ID() string {
	return d.id.String()
}

// Resume delivers the operator's decision. With proceed=true the copy phase
// runs on the calling goroutine, provided the task has not been stopped in
// the meantime. With proceed=false the task ends as stopped. Either way the
// task's single completion event is emitted.
func (d *Decision) Resume(proceed bool) {
	d.once.Do(func() {
		w := d.worker
		if !proceed {
			w.sink.Status("Copy cancelled by user.")
			w.sink.Log("Copy cancelled: operator chose not to proceed.", events.SeverityError)
			w.summary.Outcome = OutcomeStopped
			w.finish(0, 0)
			return
		}
		if !w.token.Running() {
			w.sink.Log("Copy cancelled before the confirmed copy could start.", events.SeverityError)
			w.summary.Outcome = OutcomeStopped
			w.finish(0, 0)
			return
		}
		w.sink.Log("Operator confirmed copy. Starting copy phase...", events.SeverityDetail)
		w.startCopy(d.groups, d.dest, d.total)
	})
}
