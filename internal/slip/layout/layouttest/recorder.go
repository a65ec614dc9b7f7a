// Package layouttest provides a Canvas that records drawing calls.
package layouttest

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

// Op kinds.
const (
	KindPage  = "page"
	KindFont  = "font"
	KindWidth = "width"
	KindText  = "text"
	KindRect  = "rect"
	KindLine  = "line"
	KindDash  = "dash"
	KindImage = "image"
)

// ErrImageRejected is returned by ClippedImage when RejectImages is set.
var ErrImageRejected = errors.New("layouttest: image rejected")

// Op is one recorded call.
type Op struct {
	Page  int              `json:"page"`
	Kind  string           `json:"kind"`
	Text  string           `json:"text,omitempty"`
	Rect  layout.Rect      `json:"rect"`
	Clip  layout.Rect      `json:"clip"`
	Style layout.FontStyle `json:"style,omitempty"`
	Size  float64          `json:"size,omitempty"`
	Align layout.Align     `json:"align,omitempty"`
	Bytes int              `json:"bytes,omitempty"`
}

// Recorder is an A4 Canvas that keeps every call in Ops. It also satisfies
// the document interface the assembler writes to.
type Recorder struct {
	Width, Height float64
	Ops           []Op
	RejectImages  bool

	pages int
	size  float64
}

// New returns an empty A4 Recorder.
func New() *Recorder {
	return &Recorder{Width: layout.A4Width, Height: layout.A4Height, size: 10}
}

func (r *Recorder) record(op Op) {
	op.Page = r.pages
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) PageSize() (float64, float64) { return r.Width, r.Height }

func (r *Recorder) SetFont(style layout.FontStyle, size float64) {
	r.size = size
	r.record(Op{Kind: KindFont, Style: style, Size: size})
}

func (r *Recorder) SetLineWidth(w float64) {
	r.record(Op{Kind: KindWidth, Size: w})
}

// StringWidth approximates a proportional font at half an em per rune.
func (r *Recorder) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.size * 0.5
}

func (r *Recorder) Text(cell layout.Rect, s string, align layout.Align) {
	r.record(Op{Kind: KindText, Rect: cell, Text: s, Align: align, Size: r.size})
}

func (r *Recorder) Rect(rect layout.Rect) {
	r.record(Op{Kind: KindRect, Rect: rect})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.record(Op{Kind: KindLine, Rect: layout.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}})
}

func (r *Recorder) DashedLine(x1, y1, x2, y2, dash, gap float64) {
	r.record(Op{Kind: KindDash, Rect: layout.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, Size: dash + gap})
}

func (r *Recorder) ClippedImage(name string, png []byte, dst, clip layout.Rect) error {
	if r.RejectImages {
		return ErrImageRejected
	}
	r.record(Op{Kind: KindImage, Text: name, Rect: dst, Clip: clip, Bytes: len(png)})
	return nil
}

// AddPage starts a new page; ops recorded afterwards carry its number.
func (r *Recorder) AddPage() {
	r.pages++
	r.record(Op{Kind: KindPage})
}

func (r *Recorder) PageCount() int { return r.pages }

// Bytes serializes the recorded ops.
func (r *Recorder) Bytes() ([]byte, error) {
	return json.Marshal(r.Ops)
}

// Filter returns the ops of the given kind.
func (r *Recorder) Filter(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every drawn string in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Filter(KindText) {
		out = append(out, op.Text)
	}
	return out
}

// HasText reports whether s was drawn verbatim.
func (r *Recorder) HasText(s string) bool {
	for _, t := range r.Texts() {
		if t == s {
			return true
		}
	}
	return false
}
