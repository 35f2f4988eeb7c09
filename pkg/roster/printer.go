package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Printer turns an HTML document into a PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePrinter prints with a headless Chromium started for every document.
type ChromePrinter struct {
	timeout time.Duration
}

func NewChromePrinter(timeout time.Duration) *ChromePrinter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromePrinter{timeout: timeout}
}

func (p *ChromePrinter) PrintPDF(parentCtx context.Context, html string) ([]byte, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx,
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, p.timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			pdf = buf
			return err
		}),
	}

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp run failed: %w", err)
	}
	log.Debugf("Printed roster PDF (%d bytes) in %s", len(pdf), time.Since(start))
	return pdf, nil
}
