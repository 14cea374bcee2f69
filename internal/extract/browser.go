package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser is the capability surface the rendered-DOM channel needs from a
// scriptable browser. A fake implementation stands in during tests.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, expression string, out any) error
	WaitUntil(ctx context.Context, predicate string, timeout time.Duration) error
	Close() error
}

// ChromeBrowser drives a headless Chrome instance via chromedp. The session
// is acquired lazily on first use, reused across calls, and closed exactly
// once. All calls are serialized; one session must never be driven by two
// callers at the same time.
type ChromeBrowser struct {
	userAgent string

	mu          sync.Mutex
	browserCtx  context.Context
	cancelFuncs []context.CancelFunc
	closeOnce   sync.Once
}

// NewChromeBrowser creates a ChromeBrowser. Chrome itself is not started
// until the first call that needs it.
func NewChromeBrowser(userAgent string) *ChromeBrowser {
	return &ChromeBrowser{userAgent: userAgent}
}

// ensure starts Chrome if it is not running. Callers must hold mu.
func (b *ChromeBrowser) ensure() error {
	if b.browserCtx != nil {
		if b.browserCtx.Err() != nil {
			return fmt.Errorf("browser session closed: %w", b.browserCtx.Err())
		}
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(b.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser process now so a broken environment fails here,
	// not on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return fmt.Errorf("start browser: %w", err)
	}

	b.browserCtx = browserCtx
	b.cancelFuncs = []context.CancelFunc{cancelBrowser, cancelAlloc}
	return nil
}

// Navigate loads url in the browser session.
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensure(); err != nil {
		return err
	}
	return b.run(ctx, chromedp.Navigate(url))
}

// Evaluate runs a JavaScript expression in the page and decodes the result
// into out.
func (b *ChromeBrowser) Evaluate(ctx context.Context, expression string, out any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensure(); err != nil {
		return err
	}
	return b.run(ctx, chromedp.Evaluate(expression, out))
}

// WaitUntil polls a JavaScript predicate until it evaluates true or the
// timeout elapses. A timeout fails only this wait, not the session.
func (b *ChromeBrowser) WaitUntil(ctx context.Context, predicate string, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensure(); err != nil {
		return err
	}

	var ready bool
	return b.run(ctx, chromedp.Poll(predicate, &ready, chromedp.WithPollingTimeout(timeout)))
}

// run executes actions against the shared session, bounded by the caller's
// context. Callers must hold mu.
func (b *ChromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(b.browserCtx, actions...)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Close shuts the browser down. Safe to call more than once and before the
// session was ever started.
func (b *ChromeBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		for _, cancel := range b.cancelFuncs {
			cancel()
		}
		b.cancelFuncs = nil
	})
	return nil
}
