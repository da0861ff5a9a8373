package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/narrate"
	"doc-narrator/pkg/pipeline"
	"doc-narrator/pkg/stop"
)

// fakeRunner narrates its sentences until released or until the flag is set
type fakeRunner struct {
	sentences []string
	err       error
	started   chan *stop.Flag
	release   chan struct{}
}

func newFakeRunner(sentences ...string) *fakeRunner {
	return &fakeRunner{
		sentences: sentences,
		started:   make(chan *stop.Flag, 4),
		release:   make(chan struct{}),
	}
}

func (f *fakeRunner) RunWithHooks(ctx context.Context, req domain.JobRequest, flag *stop.Flag, hooks pipeline.Hooks) (domain.Result, error) {
	f.started <- flag
	hooks.OnStage(domain.JobStatusExtracting)
	<-f.release
	if f.err != nil {
		return domain.Result{}, f.err
	}

	hooks.OnStage(domain.JobStatusNarrating)
	result := domain.Result{OriginalText: "cleaned", SourceLanguage: req.SourceLanguage, Sentences: len(f.sentences)}
	for i, s := range f.sentences {
		if flag.IsSet() {
			result.Cancelled = true
			break
		}
		hooks.OnSentence(i, len(f.sentences), narrate.Narration{Text: s, Spoken: true})
		result.Spoken++
	}
	return result, nil
}

// memoryRecorder keeps every saved record
type memoryRecorder struct {
	mu      sync.Mutex
	records []domain.RunRecord
	err     error
}

func (r *memoryRecorder) SaveRun(ctx context.Context, record domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return r.err
}

func (r *memoryRecorder) snapshot() []domain.RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RunRecord(nil), r.records...)
}

func validRequest() domain.JobRequest {
	return domain.JobRequest{URL: "https://example.com/doc.pdf", Kind: domain.KindPDF, SourceLanguage: "en"}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestManagerLifecycle verifies a job runs to completion and leaves the manager idle.
func TestManagerLifecycle(t *testing.T) {
	runner := newFakeRunner("One.", "Two.")
	recorder := &memoryRecorder{}
	m := NewManager(runner, NewEventBus(0), recorder)

	if m.Running() {
		t.Fatal("new manager should be idle")
	}
	if m.Current().Status != domain.JobStatusIdle {
		t.Fatalf("status = %s, want idle", m.Current().Status)
	}

	h, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-runner.started
	if !m.Running() {
		t.Fatal("expected running after start")
	}
	if m.Current().ID != h.ID() || m.Current().DestLanguage != "es" || m.Current().StartPage != 1 {
		t.Fatalf("current should hold the defaulted request: %+v", m.Current())
	}

	close(runner.release)
	result, err := h.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if result.Spoken != 2 || result.Cancelled {
		t.Fatalf("unexpected result: %+v", result)
	}
	if m.Running() {
		t.Fatal("manager should be idle after the job finished")
	}

	current := m.Current()
	if current.Status != domain.JobStatusDone || current.Spoken != 2 || current.FinishedAt.IsZero() {
		t.Fatalf("unexpected final record: %+v", current)
	}

	records := recorder.snapshot()
	if len(records) != 2 {
		t.Fatalf("recorded %d runs, want start and finish", len(records))
	}
	if records[0].Status != domain.JobStatusExtracting || records[1].Status != domain.JobStatusDone {
		t.Fatalf("unexpected recorded statuses: %s, %s", records[0].Status, records[1].Status)
	}
}

// TestManagerRejectsSecondJob verifies only one job may be active.
func TestManagerRejectsSecondJob(t *testing.T) {
	runner := newFakeRunner("One.")
	m := NewManager(runner, nil, nil)

	h, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-runner.started
	before := m.Current()

	if _, err := m.Start(context.Background(), validRequest()); !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("second start error = %v, want %v", err, ErrJobAlreadyRunning)
	}
	if m.Current() != before {
		t.Fatal("rejected start must not change the active job")
	}

	close(runner.release)
	if _, err := h.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}

	// a new job may start once the first has finished
	runner.release = make(chan struct{})
	close(runner.release)
	h2, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start after finish: %v", err)
	}
	if h2.ID() == h.ID() {
		t.Fatal("job IDs should differ")
	}
	if _, err := h2.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

// TestManagerValidation verifies invalid requests never start a run.
func TestManagerValidation(t *testing.T) {
	runner := newFakeRunner()
	m := NewManager(runner, nil, nil)

	req := validRequest()
	req.URL = ""
	_, err := m.Start(context.Background(), req)

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if m.Running() {
		t.Fatal("manager should stay idle")
	}
}

// TestManagerCancel verifies cancellation is cooperative and idempotent.
func TestManagerCancel(t *testing.T) {
	m := NewManager(newFakeRunner(), nil, nil)
	m.Cancel() // idle: no effect

	runner := newFakeRunner("One.", "Two.", "Three.")
	m = NewManager(runner, nil, nil)
	h, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	flag := <-runner.started

	m.Cancel()
	m.Cancel()
	if !flag.IsSet() {
		t.Fatal("cancel should set the run's flag")
	}

	close(runner.release)
	result, err := h.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("cancellation is not an error, got %v", err)
	}
	if !result.Cancelled || result.Spoken != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if m.Current().Status != domain.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", m.Current().Status)
	}
}

// TestManagerFreshFlagPerRun verifies a cancelled run does not leak into the next one.
func TestManagerFreshFlagPerRun(t *testing.T) {
	runner := newFakeRunner("One.")
	m := NewManager(runner, nil, nil)

	h, _ := m.Start(context.Background(), validRequest())
	first := <-runner.started
	m.Cancel()
	close(runner.release)
	h.Wait(waitCtx(t))

	h, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second := <-runner.started
	if first == second || second.IsSet() {
		t.Fatal("each run needs a fresh, clear flag")
	}
	result, _ := h.Wait(waitCtx(t))
	if result.Cancelled {
		t.Fatal("second run should not be cancelled")
	}
}

// TestManagerFailure verifies pipeline errors are returned and recorded.
func TestManagerFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("extracting: boom")
	recorder := &memoryRecorder{err: errors.New("db down")}
	bus := NewEventBus(0)
	m := NewManager(runner, bus, recorder)

	h, err := m.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	close(runner.release)

	if _, err := h.Wait(waitCtx(t)); err == nil || err.Error() != "extracting: boom" {
		t.Fatalf("wait error = %v", err)
	}
	if m.Current().Status != domain.JobStatusFailed || m.Current().Error != "extracting: boom" {
		t.Fatalf("unexpected record: %+v", m.Current())
	}

	events := bus.Since(0)
	last := events[len(events)-1]
	if last.Type != EventTypeError || last.JobID != h.ID() {
		t.Fatalf("last event = %+v, want error event", last)
	}
}

// TestManagerPublishesEvents verifies status and sentence events are sequenced per job.
func TestManagerPublishesEvents(t *testing.T) {
	runner := newFakeRunner("One.", "Two.")
	bus := NewEventBus(0)
	m := NewManager(runner, bus, nil)

	h, _ := m.Start(context.Background(), validRequest())
	<-runner.started
	close(runner.release)
	h.Wait(waitCtx(t))

	var types []EventType
	for _, e := range bus.Since(0) {
		if e.JobID != h.ID() {
			t.Fatalf("event for wrong job: %+v", e)
		}
		types = append(types, e.Type)
	}
	want := []EventType{EventTypeStatus, EventTypeStatus, EventTypeSentence, EventTypeSentence, EventTypeResult}
	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("types = %v, want %v", types, want)
		}
	}
}

// TestHandleWaitHonoursContext verifies a caller can stop waiting without stopping the job.
func TestHandleWaitHonoursContext(t *testing.T) {
	runner := newFakeRunner("One.")
	m := NewManager(runner, nil, nil)
	h, _ := m.Start(context.Background(), validRequest())
	<-runner.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait error = %v, want context.Canceled", err)
	}
	if !m.Running() {
		t.Fatal("job should keep running")
	}

	close(runner.release)
	<-h.Done()
}
