package layout_test

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout/layouttest"
)

const eps = 1e-6

var fakePNG = []byte("\x89PNG\r\n\x1a\nqr")

func scenarioSlip() layout.Slip {
	building := billing.Building{
		Address:       "Marka Čelebonovića 73",
		City:          "Beograd",
		BankAccount:   "16054891267",
		DefaultAmount: decimal.RequireFromString("3500.00"),
	}
	apartment := billing.Apartment{Number: 5, OwnerName: "Petar Petrović", Floor: 2}
	period := billing.Period{Month: 3, Year: 2025}
	return layout.NewSlip(apartment, building, period, bankaccount.MustParse(building.BankAccount))
}

func bandHeight() float64 { return layout.A4Height / layout.Slots }

func TestDrawSlip_ScenarioContent(t *testing.T) {
	rec := layouttest.New()
	engine := layout.NewEngine(layout.DefaultText())

	require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), 0, fakePNG))

	for _, want := range []string{
		"uplatilac",
		"Petar Petrović",
		"Marka Čelebonovića 73, sprat 2, stan 5",
		"Beograd",
		"Troškovi održavanja zgrade",
		"Stambena zajednica Marka Čelebonovića 73, Beograd",
		"NALOG ZA UPLATU",
		"RSD",
		"3.500,00",
		"160-0000000548912-67",
		"05/03",
		"pečat i potpis uplatioca",
		"mesto i datum prijema",
		"datum izvršenja",
	} {
		assert.True(t, rec.HasText(want), "missing %q", want)
	}

	for _, op := range rec.Filter(layouttest.KindText) {
		switch op.Text {
		case "3.500,00", "NALOG ZA UPLATU":
			assert.Equal(t, layout.AlignRight, op.Align, op.Text)
		}
	}
}

func TestDrawSlip_OverrideAmountWins(t *testing.T) {
	s := scenarioSlip()
	override := decimal.RequireFromString("4200.50")
	s.Apartment.OverrideAmount = &override
	s = layout.NewSlip(s.Apartment, s.Building, s.Period, s.Account)

	rec := layouttest.New()
	require.NoError(t, layout.NewEngine(layout.DefaultText()).DrawSlip(rec, s, 0, nil))
	assert.True(t, rec.HasText("4.200,50"))
	assert.False(t, rec.HasText("3.500,00"))
}

func TestDrawSlip_SeparatorsOnlyBetweenSlots(t *testing.T) {
	engine := layout.NewEngine(layout.DefaultText())

	single := layouttest.New()
	require.NoError(t, engine.DrawSlip(single, scenarioSlip(), 0, nil))
	assert.Empty(t, single.Filter(layouttest.KindDash))

	rec := layouttest.New()
	for slot := 0; slot < layout.Slots; slot++ {
		require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), slot, nil))
	}
	dashes := rec.Filter(layouttest.KindDash)
	require.Len(t, dashes, 2)
	for i, d := range dashes {
		assert.InDelta(t, float64(i+1)*bandHeight(), d.Rect.Y, eps)
		assert.InDelta(t, 0, d.Rect.H, eps)
		assert.InDelta(t, 0, d.Rect.X, eps)
		assert.InDelta(t, layout.A4Width, d.Rect.W, eps)
	}
}

func TestDrawSlip_BandOffsets(t *testing.T) {
	g := layout.DefaultGeometry()
	engine := layout.NewEngine(layout.DefaultText())

	for slot := 0; slot < layout.Slots; slot++ {
		rec := layouttest.New()
		require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), slot, fakePNG))

		border := rec.Filter(layouttest.KindRect)[0]
		top := float64(slot) * bandHeight()
		assert.InDelta(t, top+g.Margin, border.Rect.Y, eps, "slot %d", slot)
		assert.InDelta(t, bandHeight()-2*g.Margin, border.Rect.H, eps)
		assert.InDelta(t, layout.A4Width-2*g.Margin, border.Rect.W, eps)

		for _, op := range rec.Ops {
			switch op.Kind {
			case layouttest.KindText, layouttest.KindRect, layouttest.KindImage, layouttest.KindLine:
				assert.GreaterOrEqual(t, op.Rect.Y, top-eps, "%s %q above band %d", op.Kind, op.Text, slot)
				assert.LessOrEqual(t, op.Rect.Bottom(), top+bandHeight()+eps, "%s %q below band %d", op.Kind, op.Text, slot)
			}
		}
	}
}

func TestDrawSlip_DividerSpansLeftBoxes(t *testing.T) {
	g := layout.DefaultGeometry()
	rec := layouttest.New()
	require.NoError(t, layout.NewEngine(layout.DefaultText()).DrawSlip(rec, scenarioSlip(), 1, nil))

	leftX := g.Margin + g.Padding
	var boxes []layouttest.Op
	for _, op := range rec.Filter(layouttest.KindRect) {
		if op.Rect.X > leftX-eps && op.Rect.X < leftX+eps {
			boxes = append(boxes, op)
		}
	}
	require.Len(t, boxes, 3)

	var vertical []layouttest.Op
	for _, op := range rec.Filter(layouttest.KindLine) {
		if op.Rect.W == 0 && op.Rect.H > 0 {
			vertical = append(vertical, op)
		}
	}
	require.Len(t, vertical, 1)
	divider := vertical[0]
	assert.InDelta(t, bandHeight()+g.Margin+g.Padding, divider.Rect.Y, eps)
	assert.InDelta(t, boxes[2].Rect.Bottom(), divider.Rect.Bottom(), eps)
	assert.Greater(t, divider.Rect.X, boxes[0].Rect.Right())
}

func TestDrawSlip_QRAnchoredBottomRightAndCropped(t *testing.T) {
	g := layout.DefaultGeometry()
	rec := layouttest.New()
	require.NoError(t, layout.NewEngine(layout.DefaultText()).DrawSlip(rec, scenarioSlip(), 2, fakePNG))

	images := rec.Filter(layouttest.KindImage)
	require.Len(t, images, 1)
	img := images[0]
	border := rec.Filter(layouttest.KindRect)[0].Rect

	assert.Equal(t, "qr-05", img.Text)
	assert.Equal(t, len(fakePNG), img.Bytes)
	assert.InDelta(t, g.QRSize, img.Rect.W, eps)
	assert.InDelta(t, g.QRSize, img.Rect.H, eps)
	assert.InDelta(t, border.Right()-g.Padding, img.Rect.Right(), eps)
	assert.InDelta(t, img.Rect.H-g.QRCropBottom, img.Clip.H, eps)
	assert.InDelta(t, img.Rect.Y, img.Clip.Y, eps)
	assert.InDelta(t, border.Bottom()-g.Padding, img.Clip.Bottom(), eps)
}

func TestDrawSlip_MissingQRLeavesAreaBlank(t *testing.T) {
	engine := layout.NewEngine(layout.DefaultText())
	for _, qr := range [][]byte{nil, {}} {
		rec := layouttest.New()
		require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), 0, qr))
		assert.Empty(t, rec.Filter(layouttest.KindImage))
		assert.True(t, rec.HasText("05/03"))
	}
}

func TestDrawSlip_ImageFailure(t *testing.T) {
	rec := layouttest.New()
	rec.RejectImages = true

	err := layout.NewEngine(layout.DefaultText()).DrawSlip(rec, scenarioSlip(), 0, fakePNG)
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrImage))
	assert.True(t, errors.Is(err, layouttest.ErrImageRejected))
	assert.True(t, rec.HasText("3.500,00"))
}

func TestDrawSlip_SlotOutOfRange(t *testing.T) {
	engine := layout.NewEngine(layout.DefaultText())
	for _, slot := range []int{-1, layout.Slots} {
		rec := layouttest.New()
		err := engine.DrawSlip(rec, scenarioSlip(), slot, nil)
		assert.ErrorIs(t, err, layout.ErrSlot)
		assert.Empty(t, rec.Ops)
	}
}

func TestDrawSlip_Deterministic(t *testing.T) {
	engine := layout.NewEngine(layout.DefaultText())
	render := func() []byte {
		rec := layouttest.New()
		for slot := 0; slot < layout.Slots; slot++ {
			require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), slot, fakePNG))
		}
		out, err := rec.Bytes()
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, render(), render())
}

func TestDrawSlip_TextFitsCells(t *testing.T) {
	s := scenarioSlip()
	s.Apartment.OwnerName = "Aleksandra Milica Jovanović Stojanović Dragićević Petrović Nikolić Marković Đorđević"
	rec := layouttest.New()
	require.NoError(t, layout.NewEngine(layout.DefaultText()).DrawSlip(rec, s, 0, nil))

	for _, op := range rec.Filter(layouttest.KindText) {
		width := float64(utf8.RuneCountInString(op.Text)) * op.Size * 0.5
		assert.LessOrEqual(t, width, op.Rect.W+eps, "%q overflows its cell", op.Text)
	}
	assert.False(t, rec.HasText(s.Apartment.OwnerName))
}

func TestNewEngine_TextPresets(t *testing.T) {
	rec := layouttest.New()
	require.NoError(t, layout.NewEngine(layout.CyrillicText()).DrawSlip(rec, scenarioSlip(), 0, nil))
	assert.True(t, rec.HasText("НАЛОГ ЗА УПЛАТУ"))
	assert.True(t, rec.HasText("Marka Čelebonovića 73, спрат 2, стан 5"))

	partial := layout.NewEngine(layout.Text{Title: "UPLATNICA"})
	assert.Equal(t, "UPLATNICA", partial.Text().Title)
	assert.Equal(t, layout.DefaultText().PayerLabel, partial.Text().PayerLabel)
}

func TestNewEngine_WithGeometry(t *testing.T) {
	g := layout.DefaultGeometry()
	g.Margin = 20
	g.QRSize = 80
	g.QRCropBottom = 4
	engine := layout.NewEngine(layout.DefaultText(), layout.WithGeometry(g))

	rec := layouttest.New()
	require.NoError(t, engine.DrawSlip(rec, scenarioSlip(), 1, fakePNG))

	border := rec.Filter(layouttest.KindRect)[0].Rect
	assert.InDelta(t, bandHeight()+20, border.Y, eps)
	assert.InDelta(t, layout.A4Width-40, border.W, eps)

	images := rec.Filter(layouttest.KindImage)
	require.Len(t, images, 1)
	assert.InDelta(t, 80, images[0].Rect.W, eps)
	assert.InDelta(t, 76, images[0].Clip.H, eps)
	assert.InDelta(t, border.Right()-g.Padding, images[0].Rect.Right(), eps)
}
