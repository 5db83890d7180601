package synth

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"socialstorm/internal/logging"
	"socialstorm/internal/media/ffprobe"
)

// PanDirection selects the Ken Burns camera move.
type PanDirection int

const (
	PanLeftToRight PanDirection = iota
	PanRightToLeft
	PanTopToBottom
	PanBottomToTop
)

var panNames = map[PanDirection]string{
	PanLeftToRight: "left-to-right",
	PanRightToLeft: "right-to-left",
	PanTopToBottom: "top-to-bottom",
	PanBottomToTop: "bottom-to-top",
}

func (d PanDirection) String() string { return panNames[d] }

// minOutputBytes guards against ffmpeg exiting zero while writing a
// truncated or empty container.
const minOutputBytes = 16 << 10

// Options configures a Renderer.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	ClipSeconds   int
	Width         int
	Height        int
	FPS           int
}

// Renderer synthesizes portrait clips from still images.
type Renderer struct {
	opts   Options
	logger *slog.Logger

	// runCommand and validate are swapped out in tests.
	runCommand func(ctx context.Context, name string, args ...string) error
	validate   func(ctx context.Context, output string) error
}

// NewRenderer builds a Renderer, filling unset options with defaults.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.FFprobeBinary == "" {
		opts.FFprobeBinary = "ffprobe"
	}
	if opts.ClipSeconds <= 0 {
		opts.ClipSeconds = 6
	}
	if opts.Width <= 0 {
		opts.Width = 1080
	}
	if opts.Height <= 0 {
		opts.Height = 1920
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	renderer := &Renderer{opts: opts, logger: logging.NewComponentLogger(logger, "synth")}
	renderer.runCommand = renderer.execFFmpeg
	renderer.validate = renderer.validateOutput
	return renderer
}

// DirectionFor derives the pan direction from the image file name, so
// the same input always pans the same way across runs.
func DirectionFor(imagePath string) PanDirection {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(strings.ToLower(filepath.Base(imagePath))))
	return PanDirection(hasher.Sum32() % 4)
}

// Render converts imagePath into a portrait video inside destDir and
// returns the output path. The Ken Burns pass runs first; on any
// failure a static centered render is attempted, and only the static
// failure propagates.
func (r *Renderer) Render(ctx context.Context, imagePath, destDir string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("synth: source image: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("synth: ensure dest dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	output := filepath.Join(destDir, stem+"_kenburns.mp4")

	direction := DirectionFor(imagePath)
	if err := r.renderPan(ctx, imagePath, output, direction); err == nil {
		if validateErr := r.validate(ctx, output); validateErr == nil {
			r.logger.Debug("ken burns clip rendered",
				logging.String("direction", direction.String()),
				logging.String("output", output))
			return output, nil
		}
	} else {
		r.logger.Warn("ken burns render failed, falling back to static",
			logging.String(logging.FieldLocator, imagePath),
			logging.Error(err))
	}

	_ = os.Remove(output)
	output = filepath.Join(destDir, stem+"_static.mp4")
	if err := r.renderStatic(ctx, imagePath, output); err != nil {
		_ = os.Remove(output)
		return "", fmt.Errorf("synth: static fallback: %w", err)
	}
	if err := r.validate(ctx, output); err != nil {
		_ = os.Remove(output)
		return "", fmt.Errorf("synth: static fallback: %w", err)
	}
	return output, nil
}

func (r *Renderer) renderPan(ctx context.Context, imagePath, output string, direction PanDirection) error {
	frames := r.opts.ClipSeconds * r.opts.FPS
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,zoompan=z='1.12':%s:d=%d:s=%dx%d:fps=%d",
		r.opts.Width*2, r.opts.Height*2,
		r.opts.Width*2, r.opts.Height*2,
		panExpression(direction), frames,
		r.opts.Width, r.opts.Height, r.opts.FPS,
	)
	return r.runCommand(ctx, r.opts.FFmpegBinary,
		"-y", "-loop", "1", "-i", imagePath,
		"-vf", filter,
		"-t", fmt.Sprintf("%d", r.opts.ClipSeconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-preset", "fast", "-an",
		output,
	)
}

func (r *Renderer) renderStatic(ctx context.Context, imagePath, output string) error {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d",
		r.opts.Width, r.opts.Height,
		r.opts.Width, r.opts.Height,
		r.opts.FPS,
	)
	return r.runCommand(ctx, r.opts.FFmpegBinary,
		"-y", "-loop", "1", "-i", imagePath,
		"-vf", filter,
		"-t", fmt.Sprintf("%d", r.opts.ClipSeconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-preset", "fast", "-an",
		output,
	)
}

// panExpression returns the zoompan x/y motion for a direction. The
// pan travels across the oversized intermediate frame over d frames.
func panExpression(direction PanDirection) string {
	switch direction {
	case PanRightToLeft:
		return "x='(iw-iw/zoom)*(1-on/duration)':y='(ih-ih/zoom)/2'"
	case PanTopToBottom:
		return "x='(iw-iw/zoom)/2':y='(ih-ih/zoom)*on/duration'"
	case PanBottomToTop:
		return "x='(iw-iw/zoom)/2':y='(ih-ih/zoom)*(1-on/duration)'"
	default:
		return "x='(iw-iw/zoom)*on/duration':y='(ih-ih/zoom)/2'"
	}
}

func (r *Renderer) execFFmpeg(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		snippet := strings.TrimSpace(string(output))
		if len(snippet) > 400 {
			snippet = snippet[len(snippet)-400:]
		}
		return fmt.Errorf("%s failed: %w (%s)", name, err, snippet)
	}
	return nil
}

// validateOutput checks the rendered file is a real video of the
// configured dimensions, not a truncated stub.
func (r *Renderer) validateOutput(ctx context.Context, output string) error {
	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	if info.Size() < minOutputBytes {
		return fmt.Errorf("output too small: %d bytes", info.Size())
	}
	result, err := ffprobe.Inspect(ctx, r.opts.FFprobeBinary, output)
	if err != nil {
		return fmt.Errorf("probe output: %w", err)
	}
	if !result.HasVideoStream() {
		return errors.New("output has no video stream")
	}
	width, height := result.VideoDimensions()
	if width != r.opts.Width || height != r.opts.Height {
		return fmt.Errorf("output is %dx%d, want %dx%d", width, height, r.opts.Width, r.opts.Height)
	}
	return nil
}
