package layout

// FontStyle selects the regular or bold face of the slip font.
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
)

// Align is the horizontal alignment of a text cell.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Canvas is a page surface measured in points from the top-left corner.
// Implementations keep drawing state (font, line width) between calls and
// are not safe for concurrent use.
type Canvas interface {
	PageSize() (width, height float64)
	SetFont(style FontStyle, size float64)
	SetLineWidth(width float64)
	StringWidth(s string) float64
	Text(cell Rect, s string, align Align)
	Rect(r Rect)
	Line(x1, y1, x2, y2 float64)
	DashedLine(x1, y1, x2, y2, dash, gap float64)
	// ClippedImage draws a PNG into dst, showing only the part inside clip.
	ClippedImage(name string, png []byte, dst, clip Rect) error
}
