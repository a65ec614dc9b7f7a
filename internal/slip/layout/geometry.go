package layout

// Slots is the number of slips stacked on one page.
const Slots = 3

// A4 portrait in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Geometry holds the fixed measurements of a slip, in points.
type Geometry struct {
	Margin  float64 // outer border inset from the band edge
	Padding float64 // content inset from the border
	Gutter  float64 // space between the left and right sections

	LeftShare float64 // share of the usable width taken by the left section

	LabelSize  float64
	TextSize   float64
	TitleSize  float64
	LabelH     float64
	LineH      float64
	BoxPad     float64
	BoxGap     float64
	RowBoxH    float64
	TitleH     float64
	BorderW    float64
	RuleW      float64
	SeparatorW float64

	PayerLines     int
	PurposeLines   int
	RecipientLines int

	PaymentCodeW float64
	CurrencyW    float64
	ModelW       float64
	ColumnGap    float64

	QRSize       float64
	QRCropBottom float64 // trimmed off the image bottom edge

	SignatureW      float64
	SignatureOffset float64 // rule distance above the bottom of the border
	SignatureGap    float64

	SeparatorDash float64
	SeparatorGap  float64
}

// DefaultGeometry is the printed uplatnica layout on A4 portrait.
func DefaultGeometry() Geometry {
	return Geometry{
		Margin:  14,
		Padding: 8,
		Gutter:  12,

		LeftShare: 0.52,

		LabelSize:  6.5,
		TextSize:   9,
		TitleSize:  12,
		LabelH:     10,
		LineH:      11,
		BoxPad:     3,
		BoxGap:     6,
		RowBoxH:    18,
		TitleH:     16,
		BorderW:    0.8,
		RuleW:      0.5,
		SeparatorW: 0.4,

		PayerLines:     3,
		PurposeLines:   2,
		RecipientLines: 2,

		PaymentCodeW: 62,
		CurrencyW:    48,
		ModelW:       40,
		ColumnGap:    4,

		QRSize:       96,
		QRCropBottom: 6,

		SignatureW:      120,
		SignatureOffset: 26,
		SignatureGap:    22,

		SeparatorDash: 4,
		SeparatorGap:  3,
	}
}

// band is the resolved geometry of one slot on a page.
type band struct {
	top    float64
	height float64
	border Rect
	inner  Rect
	left   Rect
	right  Rect
	// dividerX is where the vertical rule between sections sits.
	dividerX float64
}

func (g Geometry) band(pageW, pageH float64, slot int) band {
	h := pageH / Slots
	top := float64(slot) * h
	border := Rect{X: g.Margin, Y: top + g.Margin, W: pageW - 2*g.Margin, H: h - 2*g.Margin}
	inner := Rect{
		X: border.X + g.Padding,
		Y: border.Y + g.Padding,
		W: border.W - 2*g.Padding,
		H: border.H - 2*g.Padding,
	}
	leftW := inner.W * g.LeftShare
	divider := inner.X + leftW
	return band{
		top:      top,
		height:   h,
		border:   border,
		inner:    inner,
		left:     Rect{X: inner.X, Y: inner.Y, W: leftW - g.Gutter/2, H: inner.H},
		right:    Rect{X: divider + g.Gutter/2, Y: inner.Y, W: inner.W - leftW - g.Gutter/2, H: inner.H},
		dividerX: divider,
	}
}

func (g Geometry) boxHeight(lines int) float64 {
	return float64(lines)*g.LineH + 2*g.BoxPad
}
