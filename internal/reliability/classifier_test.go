package reliability

import (
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = false", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 501} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = true", code)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	base := 50 * time.Millisecond
	cap := time.Second

	if got := ExponentialBackoff(0, base, cap); got != base {
		t.Fatalf("attempt 0 = %v, want %v", got, base)
	}
	if got := ExponentialBackoff(1, base, cap); got != 100*time.Millisecond {
		t.Fatalf("attempt 1 = %v", got)
	}
	if got := ExponentialBackoff(3, base, cap); got != 400*time.Millisecond {
		t.Fatalf("attempt 3 = %v", got)
	}
	if got := ExponentialBackoff(20, base, cap); got != cap {
		t.Fatalf("attempt 20 = %v, want capped at %v", got, cap)
	}
	if got := ExponentialBackoff(-1, base, cap); got != base {
		t.Fatalf("negative attempt = %v, want %v", got, base)
	}
}
