package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// monoCanvas measures every rune as one point wide.
type monoCanvas struct{ Canvas }

func (monoCanvas) StringWidth(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func TestFitRows_OneRowPerParagraphWhenFull(t *testing.T) {
	rows := fitRows(monoCanvas{}, []string{"Petar Petrović", "Ulica 1, stan 5", "Beograd"}, 40, 3)
	assert.Equal(t, []string{"Petar Petrović", "Ulica 1, stan 5", "Beograd"}, rows)
}

func TestFitRows_TruncatesLongRows(t *testing.T) {
	rows := fitRows(monoCanvas{}, []string{"Aleksandra Jovanović Stojanović", "x", "y"}, 12, 3)
	assert.Len(t, rows, 3)
	assert.True(t, strings.HasSuffix(rows[0], ellipsis))
	assert.LessOrEqual(t, utf8.RuneCountInString(rows[0]), 12)
}

func TestFitRows_WrapsIntoSpareRows(t *testing.T) {
	rows := fitRows(monoCanvas{}, []string{"Stambena zajednica Marka Čelebonovića 73, Beograd"}, 30, 2)
	assert.Equal(t, []string{"Stambena zajednica Marka", "Čelebonovića 73, Beograd"}, rows)
}

func TestFitRows_OverflowEndsInEllipsis(t *testing.T) {
	rows := fitRows(monoCanvas{}, []string{"jedan dva tri četiri pet šest sedam"}, 10, 2)
	assert.Len(t, rows, 2)
	assert.True(t, strings.HasSuffix(rows[1], ellipsis))
	for _, r := range rows {
		assert.LessOrEqual(t, utf8.RuneCountInString(r), 10)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"3500":       "3.500,00",
		"4200.5":     "4.200,50",
		"0":          "0,00",
		"12.3":       "12,30",
		"999":        "999,00",
		"1234567.89": "1.234.567,89",
		"100000":     "100.000,00",
		"-1500":      "-1.500,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}
