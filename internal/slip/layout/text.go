package layout

import (
	"fmt"
	"strings"

	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
)

// Text holds every fixed string printed on a slip.
type Text struct {
	Title                 string `yaml:"title"`
	PayerLabel            string `yaml:"payer_label"`
	PurposeLabel          string `yaml:"purpose_label"`
	RecipientLabel        string `yaml:"recipient_label"`
	PaymentCodeLabel      string `yaml:"payment_code_label"`
	CurrencyLabel         string `yaml:"currency_label"`
	AmountLabel           string `yaml:"amount_label"`
	AccountLabel          string `yaml:"account_label"`
	ModelLabel            string `yaml:"model_label"`
	ReferenceLabel        string `yaml:"reference_label"`
	PayerSignatureCaption string `yaml:"payer_signature_caption"`
	ReceiptCaption        string `yaml:"receipt_caption"`
	ExecutionDateCaption  string `yaml:"execution_date_caption"`
	RecipientPrefix       string `yaml:"recipient_prefix"`
	DefaultPurpose        string `yaml:"default_purpose"`
	FloorWord             string `yaml:"floor_word"`
	ApartmentWord         string `yaml:"apartment_word"`
	Currency              string `yaml:"currency"`
}

// DefaultText is the Serbian Latin wording of the standard uplatnica.
func DefaultText() Text {
	return Text{
		Title:                 "NALOG ZA UPLATU",
		PayerLabel:            "uplatilac",
		PurposeLabel:          "svrha uplate",
		RecipientLabel:        "primalac",
		PaymentCodeLabel:      "šifra plaćanja",
		CurrencyLabel:         "valuta",
		AmountLabel:           "iznos",
		AccountLabel:          "račun primaoca",
		ModelLabel:            "model",
		ReferenceLabel:        "poziv na broj (odobrenje)",
		PayerSignatureCaption: "pečat i potpis uplatioca",
		ReceiptCaption:        "mesto i datum prijema",
		ExecutionDateCaption:  "datum izvršenja",
		RecipientPrefix:       "Stambena zajednica",
		DefaultPurpose:        "Troškovi održavanja zgrade",
		FloorWord:             "sprat",
		ApartmentWord:         "stan",
		Currency:              "RSD",
	}
}

// CyrillicText is DefaultText in Serbian Cyrillic.
func CyrillicText() Text {
	return Text{
		Title:                 "НАЛОГ ЗА УПЛАТУ",
		PayerLabel:            "уплатилац",
		PurposeLabel:          "сврха уплате",
		RecipientLabel:        "прималац",
		PaymentCodeLabel:      "шифра плаћања",
		CurrencyLabel:         "валута",
		AmountLabel:           "износ",
		AccountLabel:          "рачун примаоца",
		ModelLabel:            "модел",
		ReferenceLabel:        "позив на број (одобрење)",
		PayerSignatureCaption: "печат и потпис уплатиоца",
		ReceiptCaption:        "место и датум пријема",
		ExecutionDateCaption:  "датум извршења",
		RecipientPrefix:       "Стамбена заједница",
		DefaultPurpose:        "Трошкови одржавања зграде",
		FloorWord:             "спрат",
		ApartmentWord:         "стан",
		Currency:              "RSD",
	}
}

// Merge returns t with every empty field taken from base.
func (t Text) Merge(base Text) Text {
	fill := func(v *string, fallback string) {
		if strings.TrimSpace(*v) == "" {
			*v = fallback
		}
	}
	fill(&t.Title, base.Title)
	fill(&t.PayerLabel, base.PayerLabel)
	fill(&t.PurposeLabel, base.PurposeLabel)
	fill(&t.RecipientLabel, base.RecipientLabel)
	fill(&t.PaymentCodeLabel, base.PaymentCodeLabel)
	fill(&t.CurrencyLabel, base.CurrencyLabel)
	fill(&t.AmountLabel, base.AmountLabel)
	fill(&t.AccountLabel, base.AccountLabel)
	fill(&t.ModelLabel, base.ModelLabel)
	fill(&t.ReferenceLabel, base.ReferenceLabel)
	fill(&t.PayerSignatureCaption, base.PayerSignatureCaption)
	fill(&t.ReceiptCaption, base.ReceiptCaption)
	fill(&t.ExecutionDateCaption, base.ExecutionDateCaption)
	fill(&t.RecipientPrefix, base.RecipientPrefix)
	fill(&t.DefaultPurpose, base.DefaultPurpose)
	fill(&t.FloorWord, base.FloorWord)
	fill(&t.ApartmentWord, base.ApartmentWord)
	fill(&t.Currency, base.Currency)
	return t
}

// PayerAddress is the second payer line, e.g. "Marka Čelebonovića 73, sprat 2, stan 5".
func (t Text) PayerAddress(b billing.Building, a billing.Apartment) string {
	return fmt.Sprintf("%s, %s %d, %s %d", b.Address, t.FloorWord, a.Floor, t.ApartmentWord, a.Number)
}

// RecipientName prefers the building's configured recipient.
func (t Text) RecipientName(b billing.Building) string {
	if name := strings.TrimSpace(b.RecipientName); name != "" {
		return name
	}
	return t.RecipientPrefix + " " + b.Address
}

// RecipientLine is the recipient box text including the city.
func (t Text) RecipientLine(b billing.Building) string {
	return t.RecipientName(b) + ", " + b.City
}

// Purpose prefers the building's configured payment purpose.
func (t Text) Purpose(b billing.Building) string {
	if p := strings.TrimSpace(b.PaymentPurpose); p != "" {
		return p
	}
	return t.DefaultPurpose
}
