// Package jobs runs narration jobs one at a time and tracks their state.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/narrate"
	"doc-narrator/pkg/pipeline"
	"doc-narrator/pkg/stop"
)

// ErrJobAlreadyRunning is returned when starting a job while another one is active
var ErrJobAlreadyRunning = errors.New("job already running")

// Runner executes one pipeline run
type Runner interface {
	RunWithHooks(ctx context.Context, req domain.JobRequest, flag *stop.Flag, hooks pipeline.Hooks) (domain.Result, error)
}

// RunRecorder persists run metadata. Failures are logged and never affect the run.
type RunRecorder interface {
	SaveRun(ctx context.Context, record domain.RunRecord) error
}

// Handle refers to one started job
type Handle struct {
	id   string
	flag *stop.Flag
	done chan struct{}

	result domain.Result
	err    error
}

// ID returns the job ID
func (h *Handle) ID() string {
	return h.id
}

// Done is closed when the job has finished
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job finishes or ctx is done. Leaving early does not stop the job.
func (h *Handle) Wait(ctx context.Context) (domain.Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
}

// Manager owns the single allowed active job and its cancellation flag
type Manager struct {
	runner   Runner
	events   *EventBus
	recorder RunRecorder

	mu      sync.RWMutex
	active  *Handle
	current domain.RunRecord
}

// NewManager creates a manager in idle state. recorder may be nil.
func NewManager(runner Runner, events *EventBus, recorder RunRecorder) *Manager {
	if events == nil {
		events = NewEventBus(0)
	}
	return &Manager{
		runner:   runner,
		events:   events,
		recorder: recorder,
		current:  domain.RunRecord{Status: domain.JobStatusIdle},
	}
}

// Events returns the manager's event bus
func (m *Manager) Events() *EventBus {
	return m.events
}

// Start validates the request and runs it on a new goroutine.
// ctx bounds the whole run, so callers pass a process-lifetime context rather than a request one.
func (m *Manager) Start(ctx context.Context, req domain.JobRequest) (*Handle, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return nil, ErrJobAlreadyRunning
	}

	h := &Handle{
		id:   uuid.NewString(),
		flag: stop.NewFlag(),
		done: make(chan struct{}),
	}
	m.active = h
	m.current = domain.RunRecord{
		ID:             h.id,
		URL:            req.URL,
		Kind:           req.Kind,
		SourceLanguage: req.SourceLanguage,
		DestLanguage:   req.DestLanguage,
		StartPage:      req.StartPage,
		Status:         domain.JobStatusExtracting,
		StartedAt:      time.Now().UTC(),
	}
	started := m.current
	m.mu.Unlock()

	log.Printf("Jobs: Starting job %s for %s (%s, %s -> %s)", h.id, req.URL, req.Kind, req.SourceLanguage, req.DestLanguage)
	m.record(ctx, started)

	go m.run(ctx, h, req)
	return h, nil
}

// Cancel asks the active job to stop after the current sentence. It does nothing when idle.
func (m *Manager) Cancel() {
	m.mu.RLock()
	active := m.active
	m.mu.RUnlock()

	if active == nil {
		return
	}
	if !active.flag.IsSet() {
		log.Printf("Jobs: Stop requested for job %s", active.id)
	}
	active.flag.Set()
}

// Running reports whether a job is active
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Status.Active()
}

// Current returns a snapshot of the active or most recent job
func (m *Manager) Current() domain.RunRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// run executes the pipeline and publishes its progress
func (m *Manager) run(ctx context.Context, h *Handle, req domain.JobRequest) {
	hooks := pipeline.Hooks{
		OnStage: func(status domain.JobStatus) {
			m.update(func(r *domain.RunRecord) { r.Status = status })
			m.events.Publish(Event{JobID: h.id, Type: EventTypeStatus, Status: status})
		},
		OnSentence: func(index, total int, n narrate.Narration) {
			m.update(func(r *domain.RunRecord) {
				r.Sentences = total
				if n.Spoken {
					r.Spoken++
				}
			})
			m.events.Publish(Event{
				JobID:    h.id,
				Type:     EventTypeSentence,
				Message:  n.Text,
				Sentence: index + 1,
				Total:    total,
				Spoken:   n.Spoken,
			})
		},
	}

	result, err := m.runner.RunWithHooks(ctx, req, h.flag, hooks)
	h.result, h.err = result, err

	m.mu.Lock()
	m.current.FinishedAt = time.Now().UTC()
	switch {
	case err != nil:
		m.current.Status = domain.JobStatusFailed
		m.current.Error = err.Error()
	case result.Cancelled:
		m.current.Status = domain.JobStatusCancelled
	default:
		m.current.Status = domain.JobStatusDone
	}
	m.current.Sentences = result.Sentences
	m.current.Spoken = result.Spoken
	finished := m.current
	m.active = nil
	m.mu.Unlock()

	if err != nil {
		log.Printf("Jobs: Job %s failed: %v", h.id, err)
		m.events.Publish(Event{JobID: h.id, Type: EventTypeError, Status: finished.Status, Message: err.Error()})
	} else {
		log.Printf("Jobs: Job %s %s (%d/%d sentences spoken)", h.id, finished.Status, result.Spoken, result.Sentences)
		m.events.Publish(Event{
			JobID:   h.id,
			Type:    EventTypeResult,
			Status:  finished.Status,
			Message: fmt.Sprintf("%d of %d sentences spoken", result.Spoken, result.Sentences),
		})
	}
	m.record(context.WithoutCancel(ctx), finished)
	close(h.done)
}

func (m *Manager) update(fn func(r *domain.RunRecord)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.current)
}

func (m *Manager) record(ctx context.Context, record domain.RunRecord) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.SaveRun(ctx, record); err != nil {
		log.Printf("Jobs: failed to save run %s: %v", record.ID, err)
	}
}
