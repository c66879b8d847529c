package export

import (
	"context"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single PDF export.
const DefaultTimeout = 30 * time.Second

// A4 paper size in inches, as Chrome's print API expects.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// PDFExporter prints job descriptions to PDF with headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type PDFExporter struct {
	Layout   Layout
	Timeout  time.Duration
	ExecPath string // optional Chrome binary; chromedp searches the PATH when empty
	Verbose  bool
}

// NewPDFExporter returns an exporter with the default layout and timeout.
func NewPDFExporter(execPath string, timeout time.Duration) *PDFExporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PDFExporter{
		Layout:   DefaultLayout(),
		Timeout:  timeout,
		ExecPath: execPath,
	}
}

// Export normalizes text, lays it out on A4 pages and returns the printed PDF bytes.
func (e *PDFExporter) Export(ctx context.Context, text, title string) ([]byte, error) {
	doc, err := Document(text, title, e.Layout)
	if err != nil {
		return nil, err
	}

	if e.Verbose {
		log.Printf("[EXPORT] Printing %q (%d bytes of HTML)", title, len(doc))
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &ExportError{
			Message: "headless print failed",
			Cause:   err,
		}
	}

	if e.Verbose {
		log.Printf("[EXPORT] Printed %d bytes of PDF", len(pdf))
	}
	return pdf, nil
}
