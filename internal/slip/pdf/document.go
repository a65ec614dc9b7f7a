// Package pdf renders slip layouts to PDF with gofpdf.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/jung-kurt/gofpdf"

	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

// Document is a gofpdf-backed layout.Canvas on A4 portrait pages, measured
// in points. It is not safe for concurrent use.
type Document struct {
	pdf    *gofpdf.Fpdf
	family string
	images int
}

// Option configures a Document.
type Option func(*gofpdf.Fpdf)

// WithTitle sets the PDF title metadata.
func WithTitle(title string) Option {
	return func(p *gofpdf.Fpdf) {
		p.SetTitle(title, true)
	}
}

// New creates an empty document using fonts.
func New(fonts Fonts, opts ...Option) (*Document, error) {
	if len(fonts.Regular) == 0 || len(fonts.Bold) == 0 {
		return nil, fmt.Errorf("%w: empty font data", ErrFontMissing)
	}
	family := fonts.Family
	if family == "" {
		family = bundledFamily
	}

	p := gofpdf.New("P", "pt", "A4", "")
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCreator("uplatnice", true)
	p.AddUTF8FontFromBytes(family, "", fonts.Regular)
	p.AddUTF8FontFromBytes(family, "B", fonts.Bold)
	for _, opt := range opts {
		opt(p)
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("pdf: init: %w", err)
	}
	return &Document{pdf: p, family: family}, nil
}

func (d *Document) AddPage() { d.pdf.AddPage() }

func (d *Document) PageCount() int { return d.pdf.PageCount() }

func (d *Document) PageSize() (float64, float64) {
	w, h := d.pdf.GetPageSize()
	return w, h
}

func (d *Document) SetFont(style layout.FontStyle, size float64) {
	s := ""
	if style == layout.Bold {
		s = "B"
	}
	d.pdf.SetFont(d.family, s, size)
}

func (d *Document) SetLineWidth(w float64) { d.pdf.SetLineWidth(w) }

func (d *Document) StringWidth(s string) float64 { return d.pdf.GetStringWidth(s) }

func (d *Document) Text(cell layout.Rect, s string, align layout.Align) {
	d.pdf.SetXY(cell.X, cell.Y)
	d.pdf.CellFormat(cell.W, cell.H, s, "", 0, string(align)+"M", false, 0, "")
}

func (d *Document) Rect(r layout.Rect) { d.pdf.Rect(r.X, r.Y, r.W, r.H, "D") }

func (d *Document) Line(x1, y1, x2, y2 float64) { d.pdf.Line(x1, y1, x2, y2) }

func (d *Document) DashedLine(x1, y1, x2, y2, dash, gap float64) {
	d.pdf.SetDashPattern([]float64{dash, gap}, 0)
	d.pdf.Line(x1, y1, x2, y2)
	d.pdf.SetDashPattern([]float64{}, 0)
}

// ClippedImage places a PNG. The data is fully decoded before it reaches
// gofpdf so a corrupt or truncated image fails this call without poisoning
// the document.
func (d *Document) ClippedImage(name string, data []byte, dst, clip layout.Rect) error {
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("pdf: image %s: %w", name, err)
	}
	d.images++
	name = fmt.Sprintf("%s-%d", name, d.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return fmt.Errorf("pdf: image %s: %w", name, err)
	}
	d.pdf.ClipRect(clip.X, clip.Y, clip.W, clip.H, false)
	d.pdf.ImageOptions(name, dst.X, dst.Y, dst.W, dst.H, false, opts, 0, "")
	d.pdf.ClipEnd()
	return nil
}

// Bytes finalizes the document. It may only be called once.
func (d *Document) Bytes() ([]byte, error) {
	if d.pdf.PageCount() == 0 {
		return nil, errors.New("pdf: document has no pages")
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
