package resilience

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/testutil"
)

func TestTimeoutGuard_Success(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "bias", fn: scoring(72)}

	res := guard.Run(context.Background(), a, testPayload(), testConfig("bias", time.Second, 1))

	testutil.AssertTrue(t, res.Success, "expected success")
	testutil.AssertEqual(t, res.Score, 72, "score")
	testutil.AssertEqual(t, res.AnalyzerName, "bias", "name")
	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindNone, "error kind")
	testutil.AssertEqual(t, res.Findings["ok"], true, "findings preserved")
}

func TestTimeoutGuard_ClampsScore(t *testing.T) {
	guard := NewTimeoutGuard(nil)

	high := guard.Run(context.Background(), &fakeAnalyzer{name: "a", fn: scoring(140)}, testPayload(), testConfig("a", time.Second, 1))
	low := guard.Run(context.Background(), &fakeAnalyzer{name: "b", fn: scoring(-3)}, testPayload(), testConfig("b", time.Second, 1))

	testutil.AssertEqual(t, high.Score, 100, "score above range clamped")
	testutil.AssertEqual(t, low.Score, 0, "score below range clamped")
}

func TestTimeoutGuard_ReturnsAtDeadline(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "slow", fn: sleeping(2*time.Second, 90)}

	start := time.Now()
	res := guard.Run(context.Background(), a, testPayload(), testConfig("slow", 50*time.Millisecond, 1))
	elapsed := time.Since(start)

	testutil.AssertFalse(t, res.Success, "late result must be discarded")
	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindTimeout, "error kind")
	testutil.AssertEqual(t, res.Score, 0, "no score on timeout")
	testutil.AssertWithin(t, elapsed, 500*time.Millisecond, "guard waited for the analyzer")
}

func TestTimeoutGuard_ParentDeadline(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "slow", fn: sleeping(2*time.Second, 90)}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res := guard.Run(ctx, a, testPayload(), testConfig("slow", 0, 1))

	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindTimeout, "pipeline deadline maps to timeout")
	testutil.AssertContains(t, res.Error, domain.ErrPipelineDeadline.Error(), "error message")
}

func TestTimeoutGuard_CancelledBeforeStart(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "x", fn: scoring(50)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := guard.Run(ctx, a, testPayload(), testConfig("x", time.Second, 1))

	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindTimeout, "error kind")
	testutil.AssertEqual(t, a.Calls(), 0, "analyzer must not be invoked")
}

func TestTimeoutGuard_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"definitive verdict", domain.Definitive("unsupported language"), domain.ErrorKindDefinitive},
		{"plain error", errors.New("upstream 503"), domain.ErrorKindTransient},
		{"deadline", context.DeadlineExceeded, domain.ErrorKindTimeout},
		{"net timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, domain.ErrorKindTimeout},
	}

	guard := NewTimeoutGuard(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAnalyzer{name: "x", fn: failing(tt.err)}
			res := guard.Run(context.Background(), a, testPayload(), testConfig("x", time.Second, 1))

			testutil.AssertFalse(t, res.Success, "expected failure")
			testutil.AssertEqual(t, res.ErrorKind, tt.want, "error kind")
			testutil.AssertEqual(t, res.Error, tt.err.Error(), "error message")
		})
	}
}

func TestTimeoutGuard_Panic(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "boom", fn: func(context.Context, int) (ports.Analysis, error) {
		panic("nil map write")
	}}

	res := guard.Run(context.Background(), a, testPayload(), testConfig("boom", time.Second, 1))

	testutil.AssertFalse(t, res.Success, "panic is a failure")
	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindDefinitive, "panic is definitive")
	testutil.AssertContains(t, res.Error, "nil map write", "panic value kept")
}

func TestTimeoutGuard_CooperativeCancellation(t *testing.T) {
	guard := NewTimeoutGuard(nil)
	a := &fakeAnalyzer{name: "coop", fn: func(ctx context.Context, _ int) (ports.Analysis, error) {
		<-ctx.Done()
		return ports.Analysis{}, errors.New("aborted by caller")
	}}

	res := guard.Run(context.Background(), a, testPayload(), testConfig("coop", 20*time.Millisecond, 1))

	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindTimeout, "cancellation error maps to timeout")
}

func TestClassify(t *testing.T) {
	testutil.AssertEqual(t, Classify(nil), domain.ErrorKindNone, "nil")
	testutil.AssertEqual(t, Classify(domain.ErrAnalyzerTimeout), domain.ErrorKindTimeout, "analyzer timeout")
	testutil.AssertEqual(t, Classify(errors.New("x")), domain.ErrorKindTransient, "unknown")
}
