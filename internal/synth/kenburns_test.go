package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourceImage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "eiffel_tower.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatalf("write source image: %v", err)
	}
	return path
}

func TestDirectionForIsDeterministic(t *testing.T) {
	first := DirectionFor("/work/a/eiffel_tower.jpg")
	for i := 0; i < 50; i++ {
		if got := DirectionFor("/work/a/eiffel_tower.jpg"); got != first {
			t.Fatalf("DirectionFor() = %v on call %d, want %v every time", got, i, first)
		}
	}
	if got := DirectionFor("/other/dir/EIFFEL_TOWER.JPG"); got != first {
		t.Fatalf("DirectionFor() = %v, want %v: direction depends only on the case-folded base name", got, first)
	}
}

func TestDirectionForVariesByName(t *testing.T) {
	seen := make(map[PanDirection]struct{})
	names := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg", "g.jpg", "h.jpg"}
	for _, name := range names {
		seen[DirectionFor(name)] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("DirectionFor() produced %d distinct directions across %d names, want variety", len(seen), len(names))
	}
}

func TestRenderUsesKenBurnsPath(t *testing.T) {
	image := writeSourceImage(t)
	dest := t.TempDir()

	var commands [][]string
	renderer := NewRenderer(Options{}, nil)
	renderer.runCommand = func(_ context.Context, name string, args ...string) error {
		commands = append(commands, append([]string{name}, args...))
		return nil
	}
	renderer.validate = func(context.Context, string) error { return nil }

	output, err := renderer.Render(context.Background(), image, dest)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasSuffix(output, "eiffel_tower_kenburns.mp4") {
		t.Errorf("output = %q, want the ken burns file name", output)
	}
	if len(commands) != 1 {
		t.Fatalf("ran %d commands, want 1", len(commands))
	}
	joined := strings.Join(commands[0], " ")
	if !strings.Contains(joined, "zoompan") {
		t.Errorf("ffmpeg args missing zoompan filter: %s", joined)
	}
}

func TestRenderFallsBackToStatic(t *testing.T) {
	image := writeSourceImage(t)
	dest := t.TempDir()

	var commands [][]string
	renderer := NewRenderer(Options{}, nil)
	renderer.runCommand = func(_ context.Context, name string, args ...string) error {
		commands = append(commands, append([]string{name}, args...))
		if len(commands) == 1 {
			return errors.New("zoompan exploded")
		}
		return nil
	}
	renderer.validate = func(context.Context, string) error { return nil }

	output, err := renderer.Render(context.Background(), image, dest)
	if err != nil {
		t.Fatalf("Render() error = %v, want static fallback to succeed", err)
	}
	if !strings.HasSuffix(output, "eiffel_tower_static.mp4") {
		t.Errorf("output = %q, want the static file name", output)
	}
	if len(commands) != 2 {
		t.Fatalf("ran %d commands, want pan then static", len(commands))
	}
	if strings.Contains(strings.Join(commands[1], " "), "zoompan") {
		t.Error("static fallback must not use zoompan")
	}
}

func TestRenderPropagatesOnlyStaticFailure(t *testing.T) {
	image := writeSourceImage(t)
	dest := t.TempDir()

	renderer := NewRenderer(Options{}, nil)
	renderer.runCommand = func(context.Context, string, ...string) error {
		return errors.New("encoder missing")
	}
	renderer.validate = func(context.Context, string) error { return nil }

	if _, err := renderer.Render(context.Background(), image, dest); err == nil {
		t.Fatal("Render() error = nil, want static failure to propagate")
	}
}

func TestRenderRejectsMissingSource(t *testing.T) {
	renderer := NewRenderer(Options{}, nil)
	if _, err := renderer.Render(context.Background(), "/does/not/exist.jpg", t.TempDir()); err == nil {
		t.Fatal("Render() error = nil, want missing-source error")
	}
}

func TestRenderValidatesOutput(t *testing.T) {
	image := writeSourceImage(t)
	dest := t.TempDir()

	validations := 0
	renderer := NewRenderer(Options{}, nil)
	renderer.runCommand = func(context.Context, string, ...string) error { return nil }
	renderer.validate = func(_ context.Context, output string) error {
		validations++
		if strings.Contains(output, "_kenburns") {
			return errors.New("wrong dimensions")
		}
		return nil
	}

	output, err := renderer.Render(context.Background(), image, dest)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasSuffix(output, "_static.mp4") {
		t.Errorf("output = %q, want fallback after failed validation", output)
	}
	if validations != 2 {
		t.Errorf("validated %d times, want both renders checked", validations)
	}
}
