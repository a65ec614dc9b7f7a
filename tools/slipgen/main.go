// Command slipgen renders a month of payment slips from a JSON description
// of the building, without a database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
	"github.com/vladan-gibisoft/MC73/internal/config"
	"github.com/vladan-gibisoft/MC73/internal/logging"
	"github.com/vladan-gibisoft/MC73/internal/qrimage"
	slipapp "github.com/vladan-gibisoft/MC73/internal/slip/application"
	slipinterfaces "github.com/vladan-gibisoft/MC73/internal/slip/interfaces"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
	"github.com/vladan-gibisoft/MC73/internal/slip/pdf"
)

type options struct {
	in       string
	outDir   string
	month    int
	year     int
	qrMode   string
	qrURL    string
	fontDir  string
	script   string
	textFile string
	sheet    bool
	strict   bool
}

type inputBuilding struct {
	Address        string          `json:"address"`
	City           string          `json:"city"`
	BankAccount    string          `json:"bank_account"`
	DefaultAmount  decimal.Decimal `json:"default_amount"`
	RecipientName  string          `json:"recipient_name"`
	PaymentPurpose string          `json:"payment_purpose"`
}

type inputApartment struct {
	Number         int              `json:"number"`
	OwnerName      string           `json:"owner_name"`
	Floor          int              `json:"floor"`
	OverrideAmount *decimal.Decimal `json:"override_amount"`
}

type input struct {
	Building   inputBuilding    `json:"building"`
	Apartments []inputApartment `json:"apartments"`
}

func main() {
	now := time.Now()
	opts := options{}
	flag.StringVar(&opts.in, "in", "", "building JSON file")
	flag.StringVar(&opts.outDir, "out", ".", "output directory")
	flag.IntVar(&opts.month, "month", int(now.Month()), "billing month (1-12)")
	flag.IntVar(&opts.year, "year", now.Year(), "billing year")
	flag.StringVar(&opts.qrMode, "qr", config.QRModeLocal, "QR source: remote, local or none")
	flag.StringVar(&opts.qrURL, "qr-url", qrimage.DefaultBaseURL, "NBS QR generator endpoint")
	flag.StringVar(&opts.fontDir, "fonts", "", "directory with DejaVuSans TTF files (default: bundled)")
	flag.StringVar(&opts.script, "script", config.ScriptLatin, "slip wording: latin or cyrillic")
	flag.StringVar(&opts.textFile, "text", "", "YAML file overriding slip wording")
	flag.BoolVar(&opts.sheet, "xlsx", false, "also write the billing summary spreadsheet")
	flag.BoolVar(&opts.strict, "strict", false, "omit the payer field from QR payloads")
	flag.Parse()

	logger, err := logging.New("info", "console", "slipgen")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("slipgen failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *zap.Logger) error {
	if opts.in == "" {
		return errors.New("missing -in")
	}
	building, apartments, err := loadInput(opts.in)
	if err != nil {
		return err
	}
	period := billing.Period{Month: opts.month, Year: opts.year}
	if err := period.Validate(time.Now()); err != nil {
		return err
	}
	text, err := config.LoadText(opts.script, opts.textFile)
	if err != nil {
		return err
	}
	provider, err := newProvider(opts.qrMode, opts.qrURL)
	if err != nil {
		return err
	}
	fonts, err := pdf.ResolveFonts(opts.fontDir)
	if err != nil {
		return err
	}
	newDocument := func() (slipapp.Document, error) {
		doc, err := pdf.New(fonts, pdf.WithTitle(text.Title))
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	engine := layout.NewEngine(text)
	assembler, err := slipapp.NewSlipAssembler(provider, newDocument, engine,
		slipapp.WithLogger(logger),
		slipapp.WithStrictPayload(opts.strict),
		slipapp.WithQRSource(opts.qrMode),
	)
	if err != nil {
		return err
	}
	files, err := render(ctx, assembler, building, apartments, period, engine.Text(), opts.sheet)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for name, data := range files {
		path := filepath.Join(opts.outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("written", zap.String("path", path), zap.Int("bytes", len(data)))
	}
	return nil
}

// render produces the slip document and, when sheet is set, the summary
// spreadsheet, keyed by file name.
func render(ctx context.Context, assembler *slipapp.SlipAssembler, building billing.Building, apartments []billing.Apartment, period billing.Period, text layout.Text, sheet bool) (map[string][]byte, error) {
	result, err := assembler.Generate(ctx, apartments, building, period)
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{result.Filename: result.Content}
	if !sheet {
		return files, nil
	}
	data, err := slipinterfaces.BuildBillingSheetXLSX(building, apartments, period, text)
	if err != nil {
		return nil, err
	}
	files[period.SheetFilename()] = data
	return files, nil
}

func loadInput(path string) (billing.Building, []billing.Apartment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return billing.Building{}, nil, fmt.Errorf("read input: %w", err)
	}
	var in input
	if err := json.Unmarshal(raw, &in); err != nil {
		return billing.Building{}, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	building := billing.Building{
		Address:        in.Building.Address,
		City:           in.Building.City,
		BankAccount:    in.Building.BankAccount,
		DefaultAmount:  in.Building.DefaultAmount,
		RecipientName:  in.Building.RecipientName,
		PaymentPurpose: in.Building.PaymentPurpose,
	}
	if err := building.Validate(); err != nil {
		return billing.Building{}, nil, err
	}
	apartments := make([]billing.Apartment, 0, len(in.Apartments))
	for _, a := range in.Apartments {
		apt := billing.Apartment{
			Number:         a.Number,
			OwnerName:      a.OwnerName,
			Floor:          a.Floor,
			OverrideAmount: a.OverrideAmount,
		}
		if err := apt.Validate(); err != nil {
			return billing.Building{}, nil, err
		}
		apartments = append(apartments, apt)
	}
	return building, apartments, nil
}

func newProvider(mode, baseURL string) (qrimage.Provider, error) {
	switch mode {
	case config.QRModeLocal:
		return qrimage.NewLocalProvider(), nil
	case config.QRModeNone:
		return qrimage.Disabled{}, nil
	case config.QRModeRemote:
		return qrimage.NewRemoteProvider(baseURL)
	}
	return nil, fmt.Errorf("unknown -qr %q", mode)
}
