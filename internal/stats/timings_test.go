package stats

import (
	"strings"
	"testing"
	"time"
)

func TestTimingsTopNOrdersBySlowest(t *testing.T) {
	ti := NewTimings()

	stop := ti.Track("slow")
	time.Sleep(5 * time.Millisecond)
	stop()

	stop = ti.Track("fast")
	stop()

	report := ti.TopN(2)
	slowIdx := strings.Index(report, "slow:")
	fastIdx := strings.Index(report, "fast:")
	if slowIdx == -1 || fastIdx == -1 {
		t.Fatalf("expected both phases in report, got %q", report)
	}
	if slowIdx > fastIdx {
		t.Fatalf("expected the slower phase first, got %q", report)
	}
}

func TestTimingsResetFrameClears(t *testing.T) {
	ti := NewTimings()
	ti.Track("op")()
	ti.ResetFrame()
	if report := ti.TopN(5); report != "" {
		t.Fatalf("expected empty report after ResetFrame, got %q", report)
	}
}
