package interfaces

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

const (
	summarySheet = "pregled"
	slipsSheet   = "uplatnice"
	amountFormat = "#,##0.00"
)

// BillingSheetHeader is the header row of the per-apartment sheet.
var BillingSheetHeader = []string{"Stan", "Sprat", "Vlasnik", "Iznos (RSD)", "Model", "Poziv na broj"}

// BuildBillingSheetXLSX renders the month's charges: a summary sheet and one
// row per apartment, ordered by number, closed by a total.
func BuildBillingSheetXLSX(building billing.Building, apartments []billing.Apartment, period billing.Period, text layout.Text) ([]byte, error) {
	if len(apartments) == 0 {
		return nil, billing.ErrEmptyInput
	}
	account, err := bankaccount.Parse(building.BankAccount)
	if err != nil {
		return nil, fmt.Errorf("billing sheet: building account: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("billing sheet: %w", err)
	}
	index, err := f.NewSheet(slipsSheet)
	if err != nil {
		return nil, fmt.Errorf("billing sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("billing sheet: header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(amountFormat)})
	if err != nil {
		return nil, fmt.Errorf("billing sheet: amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: stringPtr(amountFormat)})
	if err != nil {
		return nil, fmt.Errorf("billing sheet: total style: %w", err)
	}

	for col, header := range BillingSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(slipsSheet, cell, header)
	}
	_ = f.SetCellStyle(slipsSheet, "A1", "F1", headerStyle)
	_ = f.SetColWidth(slipsSheet, "C", "C", 32)
	_ = f.SetColWidth(slipsSheet, "D", "F", 16)

	total := decimal.Zero
	sorted := billing.SortApartments(apartments)
	for i, a := range sorted {
		row := i + 2
		amount := a.AmountDue(building)
		total = total.Add(amount)
		values := []any{
			a.Number,
			a.Floor,
			a.OwnerName,
			amount.InexactFloat64(),
			"",
			billing.NewReferenceNumber(a.Number, period.Month).String(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(slipsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("billing sheet: cell %s: %w", cell, err)
			}
		}
		_ = f.SetCellStyle(slipsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), amountStyle)
	}

	totalRow := len(sorted) + 2
	_ = f.SetCellValue(slipsSheet, fmt.Sprintf("C%d", totalRow), "Ukupno")
	if err := f.SetCellFormula(slipsSheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("SUM(D2:D%d)", totalRow-1)); err != nil {
		return nil, fmt.Errorf("billing sheet: total: %w", err)
	}
	_ = f.SetCellStyle(slipsSheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("D%d", totalRow), totalStyle)

	summary := [][2]any{
		{"Primalac", text.RecipientName(building)},
		{"Adresa", building.Address},
		{"Mesto", building.City},
		{"Račun primaoca", account.Display()},
		{"Period", period.String()},
		{"Svrha uplate", text.Purpose(building)},
		{"Broj uplatnica", len(sorted)},
		{"Ukupno (RSD)", total.InexactFloat64()},
	}
	for i, kv := range summary {
		row := i + 1
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1])
	}
	last := fmt.Sprintf("B%d", len(summary))
	_ = f.SetCellStyle(summarySheet, last, last, totalStyle)
	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "B", "B", 44)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("billing sheet: write: %w", err)
	}
	return buf.Bytes(), nil
}

func stringPtr(s string) *string { return &s }
