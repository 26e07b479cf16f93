package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/config"
	"github.com/aretw0/sortvis/internal/presentation/tui"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/aretw0/sortvis/pkg/observability"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config   config.Config
	Headless bool
	Logger   *slog.Logger

	// In and Out default to Stdin and Stdout.
	In  *os.File
	Out io.Writer
}

// Summary is the headless report of a finished run.
type Summary struct {
	Algorithm domain.Algorithm `json:"algorithm"`
	Status    domain.Status    `json:"status"`
	Size      int              `json:"size"`
	Counters  domain.Counters  `json:"counters"`
	ElapsedMS float64          `json:"elapsed_ms"`
	Sorted    bool             `json:"sorted"`
	Values    []int            `json:"values"`
}

// Execute handles the 'run' command logic, dispatching to the headless or interactive mode.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Headless {
		return RunHeadless(ctx, opts)
	}
	return RunInteractive(ctx, opts)
}

// RunHeadless sorts once without delays and writes a JSON Summary to opts.Out.
func RunHeadless(ctx context.Context, opts RunOptions) error {
	sessOpts := append(SessionOptions(opts.Config), sortvis.WithInstant())
	if opts.Logger != nil {
		sessOpts = append(sessOpts,
			sortvis.WithLogger(opts.Logger),
			sortvis.WithLifecycleHooks(observability.LogHooks(opts.Logger)),
		)
	}

	sess, err := sortvis.New(sessOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	frame, err := sess.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	enc := json.NewEncoder(opts.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(frame))
}

// Summarize builds the headless report of frame.
func Summarize(frame domain.Frame) Summary {
	sorted := true
	for i := 1; i < len(frame.Values); i++ {
		if frame.Values[i-1] > frame.Values[i] {
			sorted = false
			break
		}
	}
	return Summary{
		Algorithm: frame.Algorithm,
		Status:    frame.Status,
		Size:      len(frame.Values),
		Counters:  frame.Counters,
		ElapsedMS: float64(frame.Elapsed.Microseconds()) / 1000,
		Sorted:    sorted,
		Values:    frame.Values,
	}
}

// RunInteractive draws the bar chart full screen and drives the session from key presses
// until the user quits or ctx ends.
func RunInteractive(ctx context.Context, opts RunOptions) error {
	fd := int(opts.In.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("interactive mode needs a terminal (use --headless)")
	}

	renderer := tui.NewBarRenderer(opts.Out, tui.WithHelp(tui.KeyHelp))
	sessOpts := append(SessionOptions(opts.Config),
		sortvis.WithRenderer(renderer),
		sortvis.WithStatsSink(renderer),
		sortvis.WithTimerSink(renderer),
	)
	if opts.Logger != nil {
		sessOpts = append(sessOpts, sortvis.WithLogger(opts.Logger))
	}
	sess, err := sortvis.New(sessOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	renderer.Open()
	defer renderer.Close()
	renderer.Render(ctx, sess.Snapshot())

	keys := make(chan byte)
	done := make(chan struct{})
	defer close(done)
	go readKeys(opts.In, keys, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok || HandleKey(ctx, sess, key) {
				return nil
			}
		}
	}
}

// readKeys forwards single bytes from r until it fails or done closes. A pending
// Stdin read cannot be interrupted, so the goroutine may outlive the loop by one key.
func readKeys(r io.Reader, keys chan<- byte, done <-chan struct{}) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			select {
			case keys <- buf[0]:
			case <-done:
				return
			}
		}
	}
}
