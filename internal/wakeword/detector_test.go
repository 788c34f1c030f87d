package wakeword

import "testing"

func TestDetectDisabledByDefault(t *testing.T) {
	d := NewDetector("lily", nil)
	if d.Enabled() {
		t.Fatalf("detector enabled before Enable()")
	}
	if d.Detect("hey lily") {
		t.Fatalf("Detect() fired while disabled")
	}
}

func TestDetectFindsWord(t *testing.T) {
	d := NewDetector("Lily", nil)
	d.Enable()

	cases := []struct {
		transcript string
		want       bool
	}{
		{"hey lily how are you", true},
		{"LILY, wake up!", true},
		{"is that you, lily?", true},
		{"the lilies are blooming", false},
		{"hello there", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := d.Detect(tc.transcript); got != tc.want {
			t.Fatalf("Detect(%q) = %v, want %v", tc.transcript, got, tc.want)
		}
	}
}

func TestDetectFiresHookOncePerMatch(t *testing.T) {
	fired := 0
	d := NewDetector("lily", func() { fired++ })
	d.Enable()

	d.Detect("lily are you awake")
	d.Detect("nothing here")
	d.Detect("lily lily lily")

	if fired != 2 {
		t.Fatalf("hook fired %d times, want 2", fired)
	}
}

func TestDetectAfterDisable(t *testing.T) {
	d := NewDetector("lily", nil)
	d.Enable()
	d.Disable()
	if d.Detect("lily") {
		t.Fatalf("Detect() fired after Disable()")
	}
}

func TestNewDetectorDefaultsWord(t *testing.T) {
	d := NewDetector("   ", nil)
	if d.Word() != "lily" {
		t.Fatalf("Word() = %q, want lily", d.Word())
	}
	d = NewDetector("  Aurora ", nil)
	if d.Word() != "aurora" {
		t.Fatalf("Word() = %q, want lowercased trim", d.Word())
	}
}
