package bankaccount

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Canonical(t *testing.T) {
	inputs := []string{
		"160000000054891267",
		"265000000000000123",
		"908000000000000001",
		"000000000000000000",
	}
	for _, in := range inputs {
		acc, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, acc.Digits())
		assert.Len(t, acc.Bank(), 3)
		assert.Len(t, acc.Number(), 13)
		assert.Len(t, acc.Control(), 2)
	}
}

func TestParse_ShortForm(t *testing.T) {
	acc, err := Parse("16054891267")
	require.NoError(t, err)
	assert.Equal(t, "160", acc.Bank())
	assert.Equal(t, "67", acc.Control())
	assert.Equal(t, "0000000548912", acc.Number())
	assert.Equal(t, "160-0000000548912-67", acc.Display())
	assert.Equal(t, "160000000054891267", acc.Digits())
}

func TestParse_AllShortLengths(t *testing.T) {
	for n := MinDigits; n < DigitsLen; n++ {
		in := strings.Repeat("7", n)
		acc, err := Parse(in)
		require.NoError(t, err, "length %d", n)
		assert.Len(t, acc.Digits(), DigitsLen)
		assert.Len(t, acc.Number(), 13)
		assert.True(t, strings.HasPrefix(acc.Number(), strings.Repeat("0", DigitsLen-n)))
	}
}

func TestParse_Separators(t *testing.T) {
	cases := []string{
		"160-0000000548912-67",
		"160-548912-67",
		" 160 548912 67 ",
		"160\t548912-67",
	}
	for _, in := range cases {
		acc, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, "160-0000000548912-67", acc.Display(), in)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"blank":       "   ",
		"letters":     "160-00000005489AB-67",
		"dot":         "160.548912.67",
		"six digits":  "160567",
		"one digit":   "1",
		"dashes only": "---",
		"nineteen":    "1600000000548912670",
		"thirty":      strings.Repeat("1", 30),
		"cyrillic":    "160-548912-6б",
		"slash":       "160/548912/67",
		"plus sign":   "+16054891267",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.False(t, IsValid(in))
		})
	}
}

func TestParse_SevenDigitFloor(t *testing.T) {
	assert.True(t, IsValid("1234567"))
	assert.False(t, IsValid("123456"))

	acc := MustParse("1234567")
	assert.Equal(t, "123", acc.Bank())
	assert.Equal(t, "0000000000045", acc.Number())
	assert.Equal(t, "67", acc.Control())
}

func TestAccount_JSONUsesDisplayForm(t *testing.T) {
	payload := struct {
		Account Account `json:"account"`
	}{Account: MustParse("16054891267")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"account":"160-0000000548912-67"}`, string(data))

	var decoded struct {
		Account Account `json:"account"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"account":"160548912 67"}`), &decoded))
	assert.Equal(t, "160000000054891267", decoded.Account.Digits())
}

func TestAccount_Zero(t *testing.T) {
	var acc Account
	assert.True(t, acc.IsZero())
	assert.Equal(t, "", acc.Display())
}
