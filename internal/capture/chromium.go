package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport for the daily planner page. Width matches the
// reference geometry of the screen target (time column plus one day
// column plus margins); height covers the full 36-row grid with chrome.
const (
	DefaultWidth      = 800
	DefaultHeight     = 1750
	DefaultTimeoutSec = 30
)

// Options defines parameters for a headless-Chromium screenshot of a
// planner page.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/planner".
	URL string

	// OutputPath is where the PNG is written, e.g.
	// "/var/lib/plannercal/preview.png".
	OutputPath string

	// Width and Height are the viewport in pixels. Zero uses the
	// defaults above.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero uses DefaultTimeoutSec.
	Timeout time.Duration
}

// CapturePlannerPNG navigates a headless Chromium to opts.URL, waits for
// the page to signal readiness via a data-ready="true" attribute on the
// body, and writes a full-page PNG screenshot.
func CapturePlannerPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Extra delay for final paints before the screenshot.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
