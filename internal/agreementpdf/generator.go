// Package agreementpdf renders a role-specific agreement with the user's
// signature into a paginated PDF.
package agreementpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/go-pdf/fpdf"
	_ "golang.org/x/image/webp"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// Layout in millimetres on A4 portrait.
const (
	marginLeft      = 20.0
	textWidth       = 170.0
	topMargin       = 20.0
	pageBottom      = 270.0
	lineHeight      = 6.0
	signatureWidth  = 60.0
	signatureHeight = 25.0

	maxSignatureBytes = 10 << 20
	signatureImage    = "signature"
)

// Identity is printed on the signature page.
type Identity struct {
	Name    string
	Company string
	Date    time.Time
}

// Document is a generated PDF ready for download.
type Document struct {
	Filename string
	Data     []byte
	Pages    int
}

// ImageFetcher loads the hosted signature image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher fetches signature images over HTTP.
type HTTPImageFetcher struct {
	Client *http.Client
}

func (f HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signature fetch: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSignatureBytes))
}

type Generator struct {
	fetch ImageFetcher
}

// NewGenerator returns a Generator. A nil fetch uses HTTPImageFetcher.
func NewGenerator(fetch ImageFetcher) *Generator {
	if fetch == nil {
		fetch = HTTPImageFetcher{}
	}
	return &Generator{fetch: fetch}
}

// Generate lays out the template body with overflow pagination and appends
// a signature page. A missing or unusable signature never fails generation;
// a blank signature line is drawn instead.
func (g *Generator) Generate(ctx context.Context, t Template, id Identity, signatureURL string) (*Document, error) {
	def, ok := templates[t]
	if !ok {
		return nil, fmt.Errorf("unknown agreement template %q", t)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(def.title, true)
	pdf.SetCreator("DCarbon Solutions", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	y := topMargin
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginLeft, y, tr(def.title))
	y += 2 * lineHeight

	pdf.SetFont("Helvetica", "", 10)
	layoutParagraphs(pdf, tr, def.body, y)

	g.signaturePage(ctx, pdf, tr, id, signatureURL)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render agreement: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write agreement: %w", err)
	}
	return &Document{Filename: def.filename, Data: buf.Bytes(), Pages: pdf.PageCount()}, nil
}

// layoutParagraphs writes wrapped lines top to bottom, starting a new page
// whenever y passes pageBottom. It returns the next free y.
func layoutParagraphs(pdf *fpdf.Fpdf, tr func(string) string, paragraphs []string, y float64) float64 {
	for i, para := range paragraphs {
		if i > 0 {
			y += lineHeight / 2
		}
		for _, line := range pdf.SplitText(tr(para), textWidth) {
			if y > pageBottom {
				pdf.AddPage()
				y = topMargin
			}
			pdf.Text(marginLeft, y, line)
			y += lineHeight
		}
	}
	return y
}

func (g *Generator) signaturePage(ctx context.Context, pdf *fpdf.Fpdf, tr func(string) string, id Identity, signatureURL string) {
	pdf.AddPage()
	y := topMargin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(marginLeft, y, "Signature")
	y += 2 * lineHeight

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(marginLeft, y, tr("Name: "+id.Name))
	y += lineHeight
	if id.Company != "" {
		pdf.Text(marginLeft, y, tr("Company: "+id.Company))
		y += lineHeight
	}
	date := id.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.Text(marginLeft, y, "Date: "+date.Format("January 2, 2006"))
	y += 2 * lineHeight

	if !g.drawSignature(ctx, pdf, signatureURL, y) {
		utils.Logger.WithField("signature_url", signatureURL).Warn("agreement pdf: drawing blank signature line")
	}

	lineY := y + signatureHeight
	pdf.SetLineWidth(0.3)
	pdf.Line(marginLeft, lineY, marginLeft+signatureWidth, lineY)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(marginLeft, lineY+4, "Signature")
}

// drawSignature places the fetched image at a fixed size. Every failure
// path returns false and leaves the document error-free.
func (g *Generator) drawSignature(ctx context.Context, pdf *fpdf.Fpdf, url string, y float64) bool {
	if url == "" {
		return false
	}
	raw, err := g.fetch.Fetch(ctx, url)
	if err != nil {
		utils.Logger.WithError(err).Debug("agreement pdf: signature fetch failed")
		return false
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		utils.Logger.WithError(err).Debug("agreement pdf: signature decode failed")
		return false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return false
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(signatureImage, opts, &buf)
	if !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(signatureImage, marginLeft, y, signatureWidth, signatureHeight, false, opts, 0, "")
	if !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	return true
}
