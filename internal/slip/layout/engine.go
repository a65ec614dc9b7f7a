// Package layout draws uplatnica payment slips onto an abstract Canvas.
//
// A page holds three slips in equal horizontal bands. Each slip has a left
// section (payer, purpose, recipient) and a right section (title, amount,
// recipient account, reference, QR code).
package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrSlot is returned for a slot outside 0..Slots-1.
	ErrSlot = errors.New("layout: slot out of range")
	// ErrImage wraps a QR image the canvas could not place.
	ErrImage = errors.New("layout: image")
)

// Engine lays out slips with a fixed text set and geometry.
type Engine struct {
	text Text
	geo  Geometry
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeometry replaces the default measurements.
func WithGeometry(g Geometry) Option {
	return func(e *Engine) {
		e.geo = g
	}
}

// NewEngine builds an Engine. Empty fields of text fall back to DefaultText.
func NewEngine(text Text, opts ...Option) *Engine {
	e := &Engine{
		text: text.Merge(DefaultText()),
		geo:  DefaultGeometry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text returns the resolved slip wording.
func (e *Engine) Text() Text { return e.text }

// cursor is the next free y position within a section.
type cursor struct {
	y float64
}

func (c cursor) down(dy float64) cursor { return cursor{y: c.y + dy} }

// column is one labeled cell of a right-section row.
type column struct {
	width float64
	label string
	value string
	align Align
}

// DrawSlip draws s into band slot of the current page. A nil or empty qr
// leaves the QR area blank.
func (e *Engine) DrawSlip(cv Canvas, s Slip, slot int, qr []byte) error {
	if slot < 0 || slot >= Slots {
		return fmt.Errorf("%w: %d", ErrSlot, slot)
	}
	pageW, pageH := cv.PageSize()
	b := e.geo.band(pageW, pageH, slot)

	if slot > 0 {
		cv.SetLineWidth(e.geo.SeparatorW)
		cv.DashedLine(0, b.top, pageW, b.top, e.geo.SeparatorDash, e.geo.SeparatorGap)
	}

	cv.SetLineWidth(e.geo.BorderW)
	cv.Rect(b.border)

	cv.SetLineWidth(e.geo.RuleW)
	end := e.drawLeft(cv, b, s)
	cv.Line(b.dividerX, b.inner.Y, b.dividerX, end.y)
	e.drawLeftSignatures(cv, b)
	e.drawRight(cv, b, s)

	if len(qr) == 0 {
		return nil
	}
	dst, clip := e.qrTarget(b)
	if err := cv.ClippedImage(fmt.Sprintf("qr-%02d", s.Apartment.Number), qr, dst, clip); err != nil {
		return fmt.Errorf("%w: apartment %d: %w", ErrImage, s.Apartment.Number, err)
	}
	return nil
}

func (e *Engine) drawLeft(cv Canvas, b band, s Slip) cursor {
	g := e.geo
	x, w := b.left.X, b.left.W
	cur := cursor{y: b.left.Y}

	cur = e.labeledBox(cv, cur, x, w, e.text.PayerLabel, g.PayerLines,
		s.Apartment.OwnerName,
		e.text.PayerAddress(s.Building, s.Apartment),
		s.Building.City,
	)
	cur = cur.down(g.BoxGap)
	cur = e.labeledBox(cv, cur, x, w, e.text.PurposeLabel, g.PurposeLines, e.text.Purpose(s.Building))
	cur = cur.down(g.BoxGap)
	return e.labeledBox(cv, cur, x, w, e.text.RecipientLabel, g.RecipientLines, e.text.RecipientLine(s.Building))
}

func (e *Engine) labeledBox(cv Canvas, cur cursor, x, w float64, label string, lines int, paragraphs ...string) cursor {
	g := e.geo
	cv.SetFont(Regular, g.LabelSize)
	cv.Text(Rect{X: x, Y: cur.y, W: w, H: g.LabelH}, label, AlignLeft)
	cur = cur.down(g.LabelH)

	h := g.boxHeight(lines)
	cv.Rect(Rect{X: x, Y: cur.y, W: w, H: h})

	cv.SetFont(Regular, g.TextSize)
	inner := w - 2*g.BoxPad
	for i, row := range fitRows(cv, paragraphs, inner, lines) {
		cell := Rect{X: x + g.BoxPad, Y: cur.y + g.BoxPad + float64(i)*g.LineH, W: inner, H: g.LineH}
		cv.Text(cell, row, AlignLeft)
	}
	return cur.down(h)
}

func (e *Engine) drawLeftSignatures(cv Canvas, b band) {
	g := e.geo
	y := b.border.Bottom() - g.SignatureOffset
	e.signature(cv, b.left.X, y, e.text.PayerSignatureCaption)
	e.signature(cv, b.left.X+g.SignatureW+g.SignatureGap, y, e.text.ReceiptCaption)
}

func (e *Engine) signature(cv Canvas, x, y float64, caption string) {
	g := e.geo
	cv.Line(x, y, x+g.SignatureW, y)
	cv.SetFont(Regular, g.LabelSize)
	cv.Text(Rect{X: x, Y: y + 1, W: g.SignatureW, H: g.LabelH}, caption, AlignCenter)
}

func (e *Engine) drawRight(cv Canvas, b band, s Slip) cursor {
	g := e.geo
	r := b.right
	cur := cursor{y: r.Y}

	cv.SetFont(Bold, g.TitleSize)
	cv.Text(Rect{X: r.X, Y: cur.y, W: r.W, H: g.TitleH}, e.text.Title, AlignRight)
	cur = cur.down(g.TitleH + g.BoxPad)

	amountW := r.W - g.PaymentCodeW - g.CurrencyW - 2*g.ColumnGap
	cur = e.row(cv, cur, r.X, []column{
		{width: g.PaymentCodeW, label: e.text.PaymentCodeLabel, align: AlignLeft},
		{width: g.CurrencyW, label: e.text.CurrencyLabel, value: e.text.Currency, align: AlignCenter},
		{width: amountW, label: e.text.AmountLabel, value: FormatAmount(s.Amount), align: AlignRight},
	})
	cur = cur.down(g.BoxGap)
	cur = e.row(cv, cur, r.X, []column{
		{width: r.W, label: e.text.AccountLabel, value: s.Account.Display(), align: AlignLeft},
	})
	cur = cur.down(g.BoxGap)
	cur = e.row(cv, cur, r.X, []column{
		{width: g.ModelW, label: e.text.ModelLabel, align: AlignLeft},
		{width: r.W - g.ModelW - g.ColumnGap, label: e.text.ReferenceLabel, value: s.Reference.String(), align: AlignLeft},
	})

	e.signature(cv, r.X, b.border.Bottom()-g.SignatureOffset, e.text.ExecutionDateCaption)
	return cur
}

func (e *Engine) row(cv Canvas, cur cursor, x float64, cols []column) cursor {
	g := e.geo
	for _, c := range cols {
		cv.SetFont(Regular, g.LabelSize)
		cv.Text(Rect{X: x, Y: cur.y, W: c.width, H: g.LabelH}, c.label, AlignLeft)

		box := Rect{X: x, Y: cur.y + g.LabelH, W: c.width, H: g.RowBoxH}
		cv.Rect(box)
		if c.value != "" {
			cv.SetFont(Regular, g.TextSize)
			cell := Rect{X: box.X + g.BoxPad, Y: box.Y, W: box.W - 2*g.BoxPad, H: box.H}
			cv.Text(cell, truncate(cv, c.value, cell.W), c.align)
		}
		x += c.width + g.ColumnGap
	}
	return cur.down(g.LabelH + g.RowBoxH)
}

// qrTarget anchors the QR image to the bottom-right of the content area and
// crops QRCropBottom off its lower edge.
func (e *Engine) qrTarget(b band) (dst, clip Rect) {
	g := e.geo
	visibleH := g.QRSize - g.QRCropBottom
	dst = Rect{X: b.right.Right() - g.QRSize, Y: b.inner.Bottom() - visibleH, W: g.QRSize, H: g.QRSize}
	clip = Rect{X: dst.X, Y: dst.Y, W: g.QRSize, H: visibleH}
	return dst, clip
}
