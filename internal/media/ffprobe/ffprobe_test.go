package ffprobe

import "testing"

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Width: 1080, Height: 1920},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "9.5",
			Size:     "524288",
		},
	}
	if !result.HasVideoStream() {
		t.Fatal("expected a video stream")
	}
	if !result.IsPortrait() {
		t.Fatal("expected portrait orientation")
	}
	if result.DurationSeconds() != 9.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 524288 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidInput(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio"}},
		Format:  Format{Duration: "bad", Size: "-1"},
	}
	if result.HasVideoStream() {
		t.Fatal("audio-only container should not report video")
	}
	if result.IsPortrait() {
		t.Fatal("no dimensions should never be portrait")
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}
