package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/filetranslator/internal/adapters/fs"
	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// fakeTranslator prefixes every payload. Payloads in fail always fail;
// payloads in failTimes fail that many times, then succeed.
type fakeTranslator struct {
	mu        sync.Mutex
	fail      map[string]bool
	failTimes map[string]int
	calls     []string
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return "", fmt.Errorf("%w: backend down", domain.ErrBackendFailure)
	}
	if f.failTimes[text] > 0 {
		f.failTimes[text]--
		return "", fmt.Errorf("%w: backend busy", domain.ErrBackendFailure)
	}
	return "ro:" + text, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// flakySource fails Next a number of times before delegating.
type flakySource struct {
	ports.EntrySource
	mu    sync.Mutex
	fails int
}

func (s *flakySource) Next(ctx context.Context) (domain.Unit, bool, error) {
	s.mu.Lock()
	if s.fails > 0 {
		s.fails--
		s.mu.Unlock()
		return domain.Unit{}, false, domain.NewIOError("read", s.Path(), errors.New("device busy"))
	}
	s.mu.Unlock()
	return s.EntrySource.Next(ctx)
}

// blockingTranslator reports each call on started and waits for release.
type blockingTranslator struct {
	started chan string
	release chan struct{}
}

func newBlockingTranslator() *blockingTranslator {
	return &blockingTranslator{started: make(chan string, 16), release: make(chan struct{})}
}

func (b *blockingTranslator) Translate(ctx context.Context, text string) (string, error) {
	b.started <- text
	select {
	case <-b.release:
		return "ro:" + text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrBackendFailure, ctx.Err())
	}
}

type panicTranslator struct{}

func (panicTranslator) Translate(ctx context.Context, text string) (string, error) {
	panic("backend exploded")
}

type recordingEmitter struct {
	mu      sync.Mutex
	steps   []domain.StepOutcome
	reports []*domain.BatchReport
	states  []State
}

func (r *recordingEmitter) OnStateChange(mode domain.Mode, previous, current State, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, current)
}

func (r *recordingEmitter) OnStep(mode domain.Mode, o domain.StepOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, o)
}

func (r *recordingEmitter) OnBatchFinished(report *domain.BatchReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

type fixture struct {
	pipeline *Pipeline
	in, out  string
	emitter  *recordingEmitter
}

func newFixture(t *testing.T, mode domain.Mode, input string, tr ports.Translator, opts ...func(*PipelineConfig)) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{emitter: &recordingEmitter{}}

	var source ports.EntrySource
	var sink ports.EntrySink
	if mode == domain.ModeXML {
		f.in, f.out = filepath.Join(dir, "in.xml"), filepath.Join(dir, "out", "out.xml")
		source = fs.NewXMLSource(f.in, mockLogger{})
		sink = fs.NewXMLSink(f.out, fs.DefaultParams())
	} else {
		f.in, f.out = filepath.Join(dir, "in.txt"), filepath.Join(dir, "out", "out.txt")
		source = fs.NewLineSource(f.in)
		sink = fs.NewLineSink(f.out)
	}
	if input != "" {
		writeFile(t, f.in, input)
	}

	cfg := PipelineConfig{
		Mode:       mode,
		Source:     source,
		Sink:       sink,
		Translator: tr,
		Reports:    fs.NewReportFileRepository(filepath.Join(dir, "state"), mode),
		Logger:     mockLogger{},
		Emitter:    f.emitter,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.pipeline = NewPipeline(cfg)
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func waitIdle(t *testing.T, p *Pipeline) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.Running() {
		if time.Now().After(deadline) {
			t.Fatal("batch did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitStarted(t *testing.T, b *blockingTranslator) string {
	t.Helper()
	select {
	case s := <-b.started:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("translator was not called")
		return ""
	}
}

func TestPipeline_LineEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.ModeText, "Hello\n\nWorld\n", &fakeTranslator{})

	want := []struct {
		status     domain.StepStatus
		translated string
	}{
		{domain.StepSuccess, "ro:Hello"},
		{domain.StepSkipped, ""},
		{domain.StepSuccess, "ro:World"},
		{domain.StepCompleted, ""},
	}
	for i, w := range want {
		o, err := f.pipeline.Step(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if o.Status != w.status || o.Translated != w.translated {
			t.Errorf("step %d = %v %q, want %v %q", i, o.Status, o.Translated, w.status, w.translated)
		}
	}

	if got := readFile(t, f.in); got != "" {
		t.Errorf("source = %q, want empty", got)
	}
	if got := readFile(t, f.out); got != "ro:Hello\nro:World\n" {
		t.Errorf("sink = %q", got)
	}
}

func TestPipeline_XMLEndToEnd(t *testing.T) {
	ctx := context.Background()
	input := "<Content>\n<String ID=\"1\"><Source>Hi</Source></String>\n</Content>"
	f := newFixture(t, domain.ModeXML, input, &fakeTranslator{})

	o, err := f.pipeline.Step(ctx)
	if err != nil || o.Status != domain.StepSuccess {
		t.Fatalf("Step = %v, %v", o.Status, err)
	}

	sink := readFile(t, f.out)
	for _, part := range []string{
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`,
		"<String ID=\"1\">\n      <Source>Hi</Source>\n      <Dest>ro:Hi</Dest>\n    </String>",
		"  </Content>\n</SSTXMLRessources>",
	} {
		if !strings.Contains(sink, part) {
			t.Errorf("sink missing %q:\n%s", part, sink)
		}
	}
	if strings.Contains(readFile(t, f.in), "<String") {
		t.Errorf("source still holds the entry:\n%s", readFile(t, f.in))
	}

	st, err := f.pipeline.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Remaining != 0 || st.Translated != 1 || st.Running {
		t.Errorf("status = %+v", st)
	}
}

func TestPipeline_StatusIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.ModeText, "a\nb\n", &fakeTranslator{})

	first, err := f.pipeline.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	second, _ := f.pipeline.Status(ctx)
	if first.Remaining != second.Remaining || first.Translated != second.Translated || first.Running != second.Running {
		t.Errorf("status changed without activity: %+v vs %+v", first, second)
	}
	if first.Remaining != 2 || !first.InputExists || first.OutputExists {
		t.Errorf("status = %+v", first)
	}
}

func TestPipeline_XMLEmptyUnitForwarded(t *testing.T) {
	f := newFixture(t, domain.ModeXML, "<Content>\n<String ID=\"2\"><Source>   </Source></String>\n</Content>", &fakeTranslator{})

	o, err := f.pipeline.Step(context.Background())
	if err != nil || o.Status != domain.StepSkipped {
		t.Fatalf("Step = %v, %v", o.Status, err)
	}
	sink := readFile(t, f.out)
	if !strings.Contains(sink, "<Source></Source>\n      <Dest></Dest>") {
		t.Errorf("sink lacks identical source and dest:\n%s", sink)
	}
	if strings.Contains(readFile(t, f.in), "<String") {
		t.Error("empty entry not removed")
	}
}

func TestPipeline_XMLMissingSource(t *testing.T) {
	f := newFixture(t, domain.ModeXML, "<Content>\n<String ID=\"3\"><Dest>x</Dest></String>\n</Content>", &fakeTranslator{})

	o, err := f.pipeline.Step(context.Background())
	if err != nil || o.Status != domain.StepCompleted {
		t.Fatalf("Step = %v, %v; want completed", o.Status, err)
	}
}

func TestPipeline_SinkCorruption(t *testing.T) {
	input := "<Content>\n<String ID=\"1\"><Source>Hi</Source></String>\n</Content>"
	f := newFixture(t, domain.ModeXML, input, &fakeTranslator{})
	if err := os.MkdirAll(filepath.Dir(f.out), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, f.out, "<SSTXMLRessources><Content></Content></SSTXMLRessources>")

	o, err := f.pipeline.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if o.Status != domain.StepFailed || o.Reason != domain.ReasonSinkWrite {
		t.Fatalf("outcome = %v %q", o.Status, o.Reason)
	}
	if !errors.Is(o.Err, domain.ErrSinkCorruption) {
		t.Errorf("error = %v, want ErrSinkCorruption", o.Err)
	}
	if got := readFile(t, f.in); got != input {
		t.Errorf("source modified:\n%s", got)
	}
}

func TestPipeline_BackendFailureAsymmetry(t *testing.T) {
	tests := []struct {
		name      string
		mode      domain.Mode
		input     string
		wantLeft  int
		wantWrote int
	}{
		{"text keeps the line", domain.ModeText, "Hello\n", 1, 0},
		{"xml drops the entry", domain.ModeXML, "<Content>\n<String><Source>Hello</Source></String>\n</Content>", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, tt.mode, tt.input, &fakeTranslator{fail: map[string]bool{"Hello": true}})

			o, err := f.pipeline.Step(ctx)
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if o.Status != domain.StepFailed || o.Reason != domain.ReasonTranslation {
				t.Fatalf("outcome = %v %q", o.Status, o.Reason)
			}
			st, _ := f.pipeline.Status(ctx)
			if st.Remaining != tt.wantLeft || st.Translated != tt.wantWrote {
				t.Errorf("remaining %d translated %d, want %d %d", st.Remaining, st.Translated, tt.wantLeft, tt.wantWrote)
			}
		})
	}
}

func TestPipeline_StepRefusedDuringBatch(t *testing.T) {
	ctx := context.Background()
	tr := newBlockingTranslator()
	f := newFixture(t, domain.ModeText, "a\nb\n", tr)

	if _, err := f.pipeline.StartBatch(ctx); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	waitStarted(t, tr)

	in, out := readFile(t, f.in), readFile(t, f.out)
	if _, err := f.pipeline.Step(ctx); !errors.Is(err, domain.ErrBatchRunning) {
		t.Fatalf("Step error = %v, want ErrBatchRunning", err)
	}
	if readFile(t, f.in) != in || readFile(t, f.out) != out {
		t.Error("Step mutated the stores during a batch")
	}

	close(tr.release)
	waitIdle(t, f.pipeline)
}

func TestPipeline_StopAfterInFlightUnit(t *testing.T) {
	ctx := context.Background()
	tr := newBlockingTranslator()
	f := newFixture(t, domain.ModeText, "a\nb\nc\n", tr)

	count, err := f.pipeline.StartBatch(ctx)
	if err != nil || count != 3 {
		t.Fatalf("StartBatch = %d, %v", count, err)
	}
	waitStarted(t, tr)

	if err := f.pipeline.StopBatch(); err != nil {
		t.Fatalf("StopBatch: %v", err)
	}
	if !f.pipeline.Running() {
		t.Fatal("Stop cleared running immediately")
	}

	close(tr.release)
	waitIdle(t, f.pipeline)

	st, _ := f.pipeline.Status(ctx)
	if st.Translated > 1 || st.Remaining < 2 {
		t.Errorf("more than the in-flight unit consumed: %+v", st)
	}
	if st.LastRun == nil || !st.LastRun.Stopped {
		t.Errorf("last run = %+v, want stopped", st.LastRun)
	}
	if err := f.pipeline.StopBatch(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("StopBatch when idle = %v, want ErrNotRunning", err)
	}
}

func TestPipeline_StartConflicts(t *testing.T) {
	ctx := context.Background()

	empty := newFixture(t, domain.ModeText, "", &fakeTranslator{})
	if _, err := empty.pipeline.StartBatch(ctx); !errors.Is(err, domain.ErrNothingToProcess) {
		t.Errorf("StartBatch on absent input = %v, want ErrNothingToProcess", err)
	}

	tr := newBlockingTranslator()
	f := newFixture(t, domain.ModeText, "a\n", tr)

	var wins atomic.Int32
	var conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.StartBatch(ctx)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrAlreadyRunning):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || conflicts.Load() != 9 {
		t.Errorf("wins %d conflicts %d, want 1 and 9", wins.Load(), conflicts.Load())
	}
	if _, err := f.pipeline.ProcessAll(ctx); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("ProcessAll during batch = %v, want ErrAlreadyRunning", err)
	}

	close(tr.release)
	waitIdle(t, f.pipeline)
}

func TestPipeline_PanicResetsState(t *testing.T) {
	f := newFixture(t, domain.ModeText, "a\n", panicTranslator{})

	if _, err := f.pipeline.StartBatch(context.Background()); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	waitIdle(t, f.pipeline)

	st, _ := f.pipeline.Status(context.Background())
	if st.LastRun == nil || !st.LastRun.Aborted {
		t.Fatalf("last run = %+v, want aborted", st.LastRun)
	}
	if len(st.LastRun.Errors) != 1 || !strings.Contains(st.LastRun.Errors[0], "unexpected panic") {
		t.Errorf("errors = %v", st.LastRun.Errors)
	}
	if f.pipeline.lifecycle.StopRequested() {
		t.Error("stop request not cleared")
	}
}

func TestPipeline_ProcessAll(t *testing.T) {
	ctx := context.Background()
	input := "<Content>\n" +
		"<String ID=\"1\"><Source>one</Source></String>\n" +
		"<String ID=\"2\"><Source>bad</Source></String>\n" +
		"<String ID=\"3\"><Source> </Source></String>\n" +
		"<String ID=\"4\"><Source>four</Source></String>\n" +
		"</Content>"
	f := newFixture(t, domain.ModeXML, input, &fakeTranslator{fail: map[string]bool{"bad": true}})

	report, err := f.pipeline.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if report.Processed != 2 || report.Skipped != 1 || len(report.Errors) != 1 || report.Aborted {
		t.Errorf("report = %+v", report)
	}
	if f.pipeline.Running() {
		t.Error("still running after ProcessAll")
	}

	// Status exposes the persisted report.
	st, _ := f.pipeline.Status(ctx)
	if st.LastRun == nil || st.LastRun.Processed != 2 {
		t.Errorf("last run = %+v", st.LastRun)
	}
	if len(f.emitter.reports) != 1 {
		t.Errorf("batch finished events = %d, want 1", len(f.emitter.reports))
	}
}

func TestPipeline_BatchKeepsGoingAfterFailures(t *testing.T) {
	tr := &fakeTranslator{failTimes: map[string]int{"Hello": 2}}
	f := newFixture(t, domain.ModeText, "Hello\nWorld\n", tr)

	report, err := f.pipeline.ProcessAll(context.Background())
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if report.Aborted || report.Processed != 2 || len(report.Errors) != 2 {
		t.Errorf("report = %+v", report)
	}
	if got := readFile(t, f.in); got != "" {
		t.Errorf("source = %q, want empty", got)
	}
	if got := readFile(t, f.out); got != "ro:Hello\nro:World\n" {
		t.Errorf("sink = %q", got)
	}
}

func TestPipeline_BatchRetriesUntilStopped(t *testing.T) {
	tr := &fakeTranslator{fail: map[string]bool{"Hello": true}}
	f := newFixture(t, domain.ModeText, "Hello\nWorld\n", tr)

	if _, err := f.pipeline.StartBatch(context.Background()); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for tr.callCount() < 5 {
		if time.Now().After(deadline) {
			t.Fatalf("batch gave up after %d calls", tr.callCount())
		}
		time.Sleep(time.Millisecond)
	}
	if !f.pipeline.Running() {
		t.Fatal("batch ended on its own while the unit kept failing")
	}

	if err := f.pipeline.StopBatch(); err != nil {
		t.Fatalf("StopBatch: %v", err)
	}
	waitIdle(t, f.pipeline)

	st, err := f.pipeline.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.LastRun == nil || st.LastRun.Aborted || !st.LastRun.Stopped || len(st.LastRun.Errors) < 5 {
		t.Errorf("last run = %+v", st.LastRun)
	}
	if got := readFile(t, f.in); got != "Hello\nWorld\n" {
		t.Errorf("source = %q", got)
	}
}

func TestPipeline_BatchContinuesAfterSourceReadFailure(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.txt"), filepath.Join(dir, "out.txt")
	writeFile(t, in, "a\nb\n")

	p := NewPipeline(PipelineConfig{
		Mode:       domain.ModeText,
		Source:     &flakySource{EntrySource: fs.NewLineSource(in), fails: 2},
		Sink:       fs.NewLineSink(out),
		Translator: &fakeTranslator{},
		Logger:     mockLogger{},
	})

	report, err := p.ProcessAll(context.Background())
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if report.Aborted || report.Processed != 2 || len(report.Errors) != 2 {
		t.Errorf("report = %+v", report)
	}
	if got := readFile(t, out); got != "ro:a\nro:b\n" {
		t.Errorf("sink = %q", got)
	}
}

func TestPipeline_StallLimit(t *testing.T) {
	tr := &fakeTranslator{fail: map[string]bool{"Hello": true}}
	f := newFixture(t, domain.ModeText, "Hello\nWorld\n", tr, func(c *PipelineConfig) {
		c.StallLimit = 3
	})

	report, err := f.pipeline.ProcessAll(context.Background())
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if !report.Aborted || len(report.Errors) != 3 || report.Processed != 0 {
		t.Errorf("report = %+v", report)
	}
	if got := readFile(t, f.in); got != "Hello\nWorld\n" {
		t.Errorf("source = %q", got)
	}
}

func TestPipeline_StallLimitResetsOnProgress(t *testing.T) {
	tr := &fakeTranslator{failTimes: map[string]int{"a": 2, "b": 2}}
	f := newFixture(t, domain.ModeText, "a\nb\n", tr, func(c *PipelineConfig) {
		c.StallLimit = 3
	})

	report, err := f.pipeline.ProcessAll(context.Background())
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if report.Aborted || report.Processed != 2 || len(report.Errors) != 4 {
		t.Errorf("report = %+v", report)
	}
}

func TestPipeline_ShutdownRightAfterStartWaits(t *testing.T) {
	tr := newBlockingTranslator()
	f := newFixture(t, domain.ModeText, "a\n", tr)

	if _, err := f.pipeline.StartBatch(context.Background()); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	// No wait for the goroutine: the run is already registered.
	if err := f.pipeline.Shutdown(20 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Fatalf("Shutdown = %v, want ErrShutdownTimeout", err)
	}
	waitIdle(t, f.pipeline)
}

func TestPipeline_ShutdownTimeout(t *testing.T) {
	tr := newBlockingTranslator()
	f := newFixture(t, domain.ModeText, "a\nb\n", tr)

	if _, err := f.pipeline.StartBatch(context.Background()); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	waitStarted(t, tr)

	if err := f.pipeline.Shutdown(20 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Fatalf("Shutdown = %v, want ErrShutdownTimeout", err)
	}
	waitIdle(t, f.pipeline)

	if got := readFile(t, f.in); got != "a\nb\n" {
		t.Errorf("cancelled unit was consumed: %q", got)
	}
}

func TestPipeline_ShutdownIdle(t *testing.T) {
	f := newFixture(t, domain.ModeText, "a\n", &fakeTranslator{})
	if err := f.pipeline.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown on idle pipeline = %v", err)
	}
}
