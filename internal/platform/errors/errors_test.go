package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"trustlens/internal/testutil"
)

type fakeNetErr struct{ timeout bool }

func (e fakeNetErr) Error() string   { return "net error" }
func (e fakeNetErr) Timeout() bool   { return e.timeout }
func (e fakeNetErr) Temporary() bool { return false }

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrap(baseErr, "additional context")

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "additional context: base error", "error message")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		testutil.AssertTrue(t, Wrap(nil, "context") == nil, "wrapping nil should return nil")
		testutil.AssertTrue(t, Wrapf(nil, "context %d", 1) == nil, "wrapping nil should return nil")
	})

	t.Run("multiple wraps preserve chain", func(t *testing.T) {
		baseErr := New("base")
		wrapped := Wrap(Wrapf(baseErr, "layer %d", 1), "layer 2")

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "layer 2: layer 1: base", "full chain")
	})
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrTimeout, true},
		{"wrapped sentinel", Wrap(ErrTimeout, "call"), true},
		{"context deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net timeout", fakeNetErr{timeout: true}, true},
		{"net non-timeout", fakeNetErr{timeout: false}, false},
		{"other", New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsTimeout(tt.err), tt.want, "timeout classification")
		})
	}
}

func TestIsPermanent(t *testing.T) {
	testutil.AssertTrue(t, IsPermanent(Wrap(ErrInvalidInput, "x")), "invalid input is permanent")
	testutil.AssertTrue(t, IsPermanent(ErrUnauthorized), "unauthorized is permanent")
	testutil.AssertTrue(t, IsPermanent(ErrInvalidResponse), "invalid response is permanent")
	testutil.AssertFalse(t, IsPermanent(ErrServiceUnavailable), "unavailable is transient")
	testutil.AssertFalse(t, IsPermanent(ErrRateLimit), "rate limit is transient")
	testutil.AssertTrue(t, IsPermanent(FromStatus(http.StatusTeapot)), "unclassified 4xx is permanent")
	testutil.AssertFalse(t, IsPermanent(FromStatus(http.StatusBadGateway)), "5xx is transient")
	testutil.AssertFalse(t, IsPermanent(FromStatus(http.StatusPermanentRedirect)), "3xx is not permanent")
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusTooManyRequests, ErrRateLimit},
		{http.StatusGone, ErrNotFound},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusRequestTimeout, ErrTimeout},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
		{http.StatusServiceUnavailable, ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := FromStatus(tt.code)
			testutil.AssertErrorIs(t, err, tt.want, "status class")

			code, ok := StatusCode(Wrap(err, "call"))
			testutil.AssertTrue(t, ok, "status survives wrapping")
			testutil.AssertEqual(t, code, tt.code, "status code")
		})
	}

	testutil.AssertNoError(t, FromStatus(http.StatusOK), "2xx is not an error")
	testutil.AssertEqual(t, FromStatus(http.StatusTeapot).Error(), "HTTP 418 I'm a teapot", "unclassified message")
	testutil.AssertEqual(t, FromStatus(http.StatusBadGateway).Error(), "HTTP 502 Bad Gateway: service unavailable", "classified message")

	_, ok := StatusCode(ErrTimeout)
	testutil.AssertFalse(t, ok, "plain sentinel carries no status")
}

func TestJoin(t *testing.T) {
	err1 := New("e1")
	err2 := New("e2")
	joined := Join(err1, nil, err2)

	testutil.AssertTrue(t, Is(joined, err1), "joined contains e1")
	testutil.AssertTrue(t, Is(joined, err2), "joined contains e2")
	testutil.AssertTrue(t, Join(nil, nil) == nil, "all nil joins to nil")
}

func ExampleWrap() {
	err := Wrap(ErrServiceUnavailable, "factcheck request")
	fmt.Println(err)
	// Output: factcheck request: service unavailable
}
