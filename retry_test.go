package premortem

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestShouldRetry_NonRetryableSentinels(t *testing.T) {
	if ShouldRetry(nil) {
		t.Fatalf("nil should not retry")
	}
	if ShouldRetry(context.Canceled) {
		t.Fatalf("context.Canceled should not retry")
	}
	if ShouldRetry(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)) {
		t.Fatalf("wrapped context.DeadlineExceeded should not retry")
	}
}

func TestShouldRetry_StatusCodes(t *testing.T) {
	cases := map[int]bool{
		400: false,
		403: false,
		404: false,
		408: true,
		429: true,
		500: true,
		503: true,
	}
	for code, want := range cases {
		if got := ShouldRetry(StatusError{StatusCode: code}); got != want {
			t.Fatalf("status %d: ShouldRetry=%v, want %v", code, got, want)
		}
	}
}

func TestShouldRetry_ErrorCodes(t *testing.T) {
	for _, c := range []ErrorCode{GenerationFailure, MalformedScenario, PolicyConfigInvalid} {
		if ShouldRetry(NewError(c, errors.New("x"), nil)) {
			t.Fatalf("%s should not retry", c)
		}
	}
	if !ShouldRetry(NewError(LookupUnavailable, errors.New("dial tcp: connection refused"), nil)) {
		t.Fatalf("LookupUnavailable should retry")
	}
	if !ShouldRetry(errors.New("connection reset by peer")) {
		t.Fatalf("unclassified errors should retry")
	}
}

func TestShouldRetry_Permanent(t *testing.T) {
	base := errors.New("bad payload")
	err := fmt.Errorf("lookup: %w", Permanent(base))
	if ShouldRetry(err) {
		t.Fatalf("permanent errors should not retry")
	}
	if !errors.Is(err, base) {
		t.Fatalf("Permanent should keep the wrapped error in the chain")
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) should be nil")
	}
}

func TestRetryN(t *testing.T) {
	prev := RetryBase
	RetryBase = time.Millisecond
	defer func() { RetryBase = prev }()

	calls := 0
	err := RetryN(context.Background(), 3, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return StatusError{StatusCode: 503}
		}
		return nil
	}, nil)
	if err != nil || calls != 3 {
		t.Fatalf("got err=%v calls=%d, want success on third call", err, calls)
	}

	calls = 0
	gaveUp := false
	err = RetryN(context.Background(), 2, func(ctx context.Context) error {
		calls++
		return StatusError{StatusCode: 500}
	}, func(ctx context.Context) { gaveUp = true })
	if err == nil || calls != 3 || !gaveUp {
		t.Fatalf("got err=%v calls=%d gaveUp=%v, want failure after 3 calls", err, calls, gaveUp)
	}

	calls = 0
	err = RetryN(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return StatusError{StatusCode: 404}
	}, nil)
	var se StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 || calls != 1 {
		t.Fatalf("got err=%v calls=%d, want a single attempt returning the 404", err, calls)
	}
}
