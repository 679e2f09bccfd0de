package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/testutil"
)

func init() {
	pterm.DisableStyling()
}

// recordingPresenter registra las llamadas recibidas
type recordingPresenter struct {
	mu       sync.Mutex
	calls    []string
	finished map[string]Status
	stats    []RunStats
	closed   bool
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{finished: make(map[string]Status)}
}

func (r *recordingPresenter) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recordingPresenter) Start(info RunInfo)        { r.record("start:" + info.RunID) }
func (r *recordingPresenter) StartAnalyzer(name string) { r.record("started:" + name) }
func (r *recordingPresenter) FinishAnalyzer(name string, status Status, result domain.AnalyzerResult) {
	r.mu.Lock()
	r.finished[name] = status
	r.mu.Unlock()
	r.record("finished:" + name + ":" + status.String())
}
func (r *recordingPresenter) Info(msg string)    { r.record("info:" + msg) }
func (r *recordingPresenter) Warning(msg string) { r.record("warn:" + msg) }
func (r *recordingPresenter) Error(msg string)   { r.record("error:" + msg) }
func (r *recordingPresenter) Finish(stats RunStats) {
	r.mu.Lock()
	r.stats = append(r.stats, stats)
	r.mu.Unlock()
	r.record("finish:" + stats.RunID)
}
func (r *recordingPresenter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingPresenter) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func analyzerEvent(t ports.EventType, run, name string, res domain.AnalyzerResult) ports.Event {
	return ports.NewEvent(t, run, name, ports.AnalyzerEvent{Result: res})
}

func TestProgressNotifier_InOrder(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)
	ctx := context.Background()

	events := []ports.Event{
		ports.NewEvent(ports.EventTypePipelineStarted, "run-1", "", ports.PipelineStartedEvent{PayloadID: "p", Analyzers: []string{"bias", "credibility"}}),
		ports.NewEvent(ports.EventTypeAnalyzerStarted, "run-1", "bias", nil),
		analyzerEvent(ports.EventTypeAnalyzerCompleted, "run-1", "bias", domain.NewSuccessResult("bias", 80, nil)),
		analyzerEvent(ports.EventTypeAnalyzerCached, "run-1", "credibility", domain.NewSuccessResult("credibility", 70, nil)),
		ports.NewEvent(ports.EventTypePipelineCompleted, "run-1", "", ports.PipelineCompletedEvent{}),
	}
	for _, e := range events {
		testutil.AssertNoError(t, n.Notify(ctx, e), "notify should not fail")
	}

	want := []string{
		"start:run-1",
		"started:bias",
		"finished:bias:success",
		"finished:credibility:cached",
		"finish:run-1",
	}
	testutil.AssertEqual(t, strings.Join(rec.snapshot(), ","), strings.Join(want, ","), "call sequence")
	testutil.AssertEqual(t, n.Status("run-1", "bias"), StatusSuccess, "bias state")
}

func TestProgressNotifier_LateStartIgnored(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)
	ctx := context.Background()

	res := domain.NewFailureResult("factcheck", domain.ErrorKindTimeout, nil)
	_ = n.Notify(ctx, analyzerEvent(ports.EventTypeAnalyzerTimeout, "run-1", "factcheck", res))
	_ = n.Notify(ctx, ports.NewEvent(ports.EventTypeAnalyzerStarted, "run-1", "factcheck", nil))

	testutil.AssertEqual(t, n.Status("run-1", "factcheck"), StatusTimeout, "terminal state kept")
	testutil.AssertEqual(t, strings.Join(rec.snapshot(), ","), "finished:factcheck:timeout", "started after completion is dropped")
}

func TestProgressNotifier_DuplicateTerminal(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)
	ctx := context.Background()

	res := domain.NewFailureResult("sourcing", domain.ErrorKindTransient, nil)
	_ = n.Notify(ctx, analyzerEvent(ports.EventTypeAnalyzerFailed, "run-1", "sourcing", res))
	_ = n.Notify(ctx, analyzerEvent(ports.EventTypeAnalyzerCompleted, "run-1", "sourcing", domain.NewSuccessResult("sourcing", 50, nil)))

	testutil.AssertEqual(t, n.Status("run-1", "sourcing"), StatusError, "first terminal state wins")
	testutil.AssertLen(t, rec.snapshot(), 1, "duplicate terminal event dropped")
}

func TestProgressNotifier_AfterCompletion(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)
	ctx := context.Background()

	_ = n.Notify(ctx, ports.NewEvent(ports.EventTypePipelineCompleted, "run-1", "", ports.PipelineCompletedEvent{}))
	_ = n.Notify(ctx, ports.NewEvent(ports.EventTypePipelineCompleted, "run-1", "", ports.PipelineCompletedEvent{}))
	_ = n.Notify(ctx, ports.NewEvent(ports.EventTypeAnalyzerStarted, "run-1", "bias", nil))
	_ = n.Notify(ctx, ports.NewEvent(ports.EventTypePipelineStarted, "run-1", "", ports.PipelineStartedEvent{}))

	testutil.AssertEqual(t, strings.Join(rec.snapshot(), ","), "finish:run-1", "only one finish, nothing after it")
}

func TestProgressNotifier_Stats(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)

	score := 66
	cached := domain.NewSuccessResult("bias", 66, nil)
	cached.FromCache = true
	outcome := &domain.PipelineOutcome{
		RunID:              "run-9",
		OverallScore:       &score,
		Level:              domain.LevelFair,
		AnalyzersRun:       3,
		AnalyzersSucceeded: 2,
		SufficientData:     true,
		PerAnalyzer: map[string]domain.AnalyzerResult{
			"bias":        cached,
			"credibility": domain.NewSuccessResult("credibility", 66, nil),
			"factcheck":   domain.NewFailureResult("factcheck", domain.ErrorKindTransient, nil),
		},
	}
	_ = n.Notify(context.Background(), ports.NewEvent(ports.EventTypePipelineCompleted, "run-9", "", ports.PipelineCompletedEvent{Outcome: outcome}))

	testutil.AssertLen(t, rec.stats, 1, "one finish")
	stats := rec.stats[0]
	testutil.AssertEqual(t, stats.Succeeded, 2, "succeeded")
	testutil.AssertEqual(t, stats.Failed, 1, "failed")
	testutil.AssertEqual(t, stats.Cached, 1, "cached")
	testutil.AssertEqual(t, *stats.Score, 66, "score")
}

func TestProgressNotifier_Concurrent(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, name := range names {
		for i := 0; i < 3; i++ {
			wg.Add(2)
			go func(name string) {
				defer wg.Done()
				_ = n.Notify(ctx, ports.NewEvent(ports.EventTypeAnalyzerStarted, "run-1", name, nil))
			}(name)
			go func(name string) {
				defer wg.Done()
				_ = n.Notify(ctx, analyzerEvent(ports.EventTypeAnalyzerCompleted, "run-1", name, domain.NewSuccessResult(name, 50, nil)))
			}(name)
		}
	}
	wg.Wait()

	for _, name := range names {
		testutil.AssertEqual(t, n.Status("run-1", name), StatusSuccess, "final state for "+name)
	}
	testutil.AssertLen(t, rec.finished, len(names), "one finish per analyzer")
}

func TestProgressNotifier_Close(t *testing.T) {
	rec := newRecordingPresenter()
	n := NewProgressNotifier(rec)

	testutil.AssertNoError(t, n.Close(), "close should succeed")
	testutil.AssertTrue(t, rec.closed, "presenter closed")
}

func TestPTermPresenter_Output(t *testing.T) {
	var buf bytes.Buffer
	p := NewPTermPresenter(&buf)

	p.Start(RunInfo{RunID: "run-1", PayloadID: "doc-7", Analyzers: []string{"bias", "factcheck"}})
	p.StartAnalyzer("bias")

	ok := domain.NewSuccessResult("bias", 72, nil)
	ok.Elapsed = 150 * time.Millisecond
	p.FinishAnalyzer("bias", StatusSuccess, ok)

	fail := domain.NewFailureResult("factcheck", domain.ErrorKindTimeout, nil)
	fail.Attempts = 3
	p.FinishAnalyzer("factcheck", StatusTimeout, fail)

	score := 72
	p.Finish(RunStats{RunID: "run-1", Score: &score, Level: domain.LevelGood, Succeeded: 1, Failed: 1, SufficientData: true, Duration: 2 * time.Second})
	testutil.AssertNoError(t, p.Close(), "close")

	out := buf.String()
	for _, want := range []string{"run-1", "doc-7", "bias, factcheck", "running...", "score 72 (150ms)", "timeout after 3 attempts", "[2/2]", "72/100", "good", "2.0s"} {
		testutil.AssertTrue(t, strings.Contains(out, want), "output should contain "+want)
	}
}

func TestRawPresenter_Text(t *testing.T) {
	var buf bytes.Buffer
	r := NewRawPresenter(&buf, LogFormatText)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	res := domain.NewFailureResult("factcheck", domain.ErrorKindTransient, nil)
	res.Error = "upstream unavailable"
	r.FinishAnalyzer("factcheck", StatusError, res)

	line := strings.TrimSpace(buf.String())
	testutil.AssertTrue(t, strings.HasPrefix(line, "2024-01-02T03:04:05Z WARN  analyzer_completed"), "timestamp and level prefix")
	testutil.AssertTrue(t, strings.Contains(line, `error="upstream unavailable"`), "quoted error")
	testutil.AssertTrue(t, strings.Contains(line, "error_kind=transient_failure"), "error kind")
	testutil.AssertTrue(t, strings.Index(line, "analyzer=") < strings.Index(line, "status="), "keys sorted")
}

func TestRawPresenter_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRawPresenter(&buf, LogFormatJSON)

	r.Finish(RunStats{RunID: "run-2", Duration: time.Second, Level: domain.LevelUnknown})

	var entry map[string]interface{}
	testutil.AssertNoError(t, json.Unmarshal(buf.Bytes(), &entry), "valid JSON line")
	testutil.AssertEqual(t, entry["message"], interface{}("run_completed"), "message")

	data, ok := entry["data"].(map[string]interface{})
	testutil.AssertTrue(t, ok, "data object")
	testutil.AssertEqual(t, data["duration"], interface{}("1s"), "durations rendered as strings")
	testutil.AssertEqual(t, data["score"], interface{}("n/a"), "missing score")
}

func TestNewPresenter(t *testing.T) {
	var buf bytes.Buffer

	for mode, want := range map[UIMode]string{
		UIModeProgress: "*ui.PTermPresenter",
		UIModeRaw:      "*ui.RawPresenter",
		UIModeJSON:     "*ui.RawPresenter",
		UIModeQuiet:    "*ui.NoopPresenter",
	} {
		p, err := NewPresenter(mode, &buf)
		testutil.AssertNoError(t, err, "mode "+string(mode))
		testutil.AssertEqual(t, typeName(p), want, "presenter for "+string(mode))
	}

	_, err := NewPresenter("fancy", &buf)
	testutil.AssertError(t, err, "unknown mode should fail")
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *PTermPresenter:
		return "*ui.PTermPresenter"
	case *RawPresenter:
		return "*ui.RawPresenter"
	case *NoopPresenter:
		return "*ui.NoopPresenter"
	default:
		return "?"
	}
}
