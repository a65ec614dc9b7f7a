package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
	"github.com/vladan-gibisoft/MC73/internal/observability/metrics"
	"github.com/vladan-gibisoft/MC73/internal/qrimage"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

const (
	// DefaultQRSize is the requested QR edge in pixels.
	DefaultQRSize = 300
	// DefaultConcurrency bounds parallel QR fetches.
	DefaultConcurrency = 8
)

// Document is a canvas that collects pages and serializes them.
type Document interface {
	layout.Canvas
	AddPage()
	PageCount() int
	Bytes() ([]byte, error)
}

// DocumentFactory creates an empty document for one generation.
type DocumentFactory func() (Document, error)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Result is a generated slip document.
type Result struct {
	ID          string
	Filename    string
	Content     []byte
	Pages       int
	Slips       int
	MissingQR   []int // apartment numbers printed without a QR code
	GeneratedAt time.Time
}

// SlipAssembler turns a building's apartments into a paginated slip document.
type SlipAssembler struct {
	provider    qrimage.Provider
	newDocument DocumentFactory
	engine      *layout.Engine
	logger      *zap.Logger
	clock       Clock
	qrSize      int
	concurrency int
	omitPayer   bool
	qrSource    string
}

// Option configures a SlipAssembler.
type Option func(*SlipAssembler)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SlipAssembler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *SlipAssembler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithQRSize sets the requested QR image size in pixels.
func WithQRSize(size int) Option {
	return func(s *SlipAssembler) {
		if size > 0 {
			s.qrSize = size
		}
	}
}

// WithConcurrency bounds the number of QR fetches in flight.
func WithConcurrency(n int) Option {
	return func(s *SlipAssembler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithStrictPayload leaves the optional payer field out of QR payloads.
func WithStrictPayload(strict bool) Option {
	return func(s *SlipAssembler) {
		s.omitPayer = strict
	}
}

// WithQRSource labels QR fetch metrics, e.g. "remote" or "local".
func WithQRSource(source string) Option {
	return func(s *SlipAssembler) {
		s.qrSource = source
	}
}

// NewSlipAssembler constructs the assembler.
func NewSlipAssembler(provider qrimage.Provider, newDocument DocumentFactory, engine *layout.Engine, opts ...Option) (*SlipAssembler, error) {
	if provider == nil {
		return nil, errors.New("slip assembler: nil provider")
	}
	if newDocument == nil {
		return nil, errors.New("slip assembler: nil document factory")
	}
	if engine == nil {
		return nil, errors.New("slip assembler: nil layout engine")
	}
	s := &SlipAssembler{
		provider:    provider,
		newDocument: newDocument,
		engine:      engine,
		logger:      zap.NewNop(),
		clock:       SystemClock{},
		qrSize:      DefaultQRSize,
		concurrency: DefaultConcurrency,
		qrSource:    "unknown",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate renders one slip per apartment, three to a page, ordered by
// apartment number. A failed QR fetch leaves that slip's QR area blank; an
// unparsable building account aborts before any fetch.
func (s *SlipAssembler) Generate(ctx context.Context, apartments []billing.Apartment, building billing.Building, period billing.Period) (*Result, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSlipGenerate(result, time.Since(start))
	}()

	if len(apartments) == 0 {
		result = metrics.ResultError
		return nil, billing.ErrEmptyInput
	}
	account, err := bankaccount.Parse(building.BankAccount)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("slip assembler: building account: %w", err)
	}

	sorted := billing.SortApartments(apartments)
	slips := make([]layout.Slip, len(sorted))
	for i, a := range sorted {
		slips[i] = layout.NewSlip(a, building, period, account)
	}

	images := s.fetchAll(ctx, slips)
	if err := ctx.Err(); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	doc, err := s.newDocument()
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("slip assembler: new document: %w", err)
	}

	doc.AddPage()
	var missing []int
	for i, slip := range slips {
		if i > 0 && i%layout.Slots == 0 {
			doc.AddPage()
		}
		qr := images[i]
		if err := s.engine.DrawSlip(doc, slip, i%layout.Slots, qr); err != nil {
			if !errors.Is(err, layout.ErrImage) {
				result = metrics.ResultError
				return nil, fmt.Errorf("slip assembler: apartment %d: %w", slip.Apartment.Number, err)
			}
			s.logger.Warn("qr image not placed",
				zap.Int("apartment", slip.Apartment.Number),
				zap.Error(err),
			)
			qr = nil
		}
		if len(qr) == 0 {
			missing = append(missing, slip.Apartment.Number)
		}
	}

	content, err := doc.Bytes()
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("slip assembler: render: %w", err)
	}
	if len(missing) > 0 {
		result = metrics.ResultPartial
	}
	metrics.AddSlipsRendered(len(slips))

	res := &Result{
		ID:          uuid.NewString(),
		Filename:    period.Filename(),
		Content:     content,
		Pages:       doc.PageCount(),
		Slips:       len(slips),
		MissingQR:   missing,
		GeneratedAt: s.clock.Now(),
	}
	s.logger.Info("slip document generated",
		zap.String("generation_id", res.ID),
		zap.String("period", period.String()),
		zap.Int("slips", res.Slips),
		zap.Int("pages", res.Pages),
		zap.Ints("missing_qr", missing),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// Payload builds the QR payload printed on an apartment's slip.
func (s *SlipAssembler) Payload(apartment billing.Apartment, building billing.Building, period billing.Period) (ipsqr.Payload, error) {
	account, err := bankaccount.Parse(building.BankAccount)
	if err != nil {
		return ipsqr.Payload{}, fmt.Errorf("slip assembler: building account: %w", err)
	}
	return s.payload(layout.NewSlip(apartment, building, period, account)), nil
}

// QRImage fetches the QR image for one apartment. Unlike Generate, a failed
// fetch is returned to the caller.
func (s *SlipAssembler) QRImage(ctx context.Context, apartment billing.Apartment, building billing.Building, period billing.Period) ([]byte, error) {
	payload, err := s.Payload(apartment, building, period)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	img, err := s.provider.Fetch(ctx, payload, s.qrSize)
	if err != nil {
		metrics.ObserveQRFetch(s.qrSource, metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("slip assembler: qr for apartment %d: %w", apartment.Number, err)
	}
	metrics.ObserveQRFetch(s.qrSource, metrics.ResultSuccess, time.Since(start))
	return img, nil
}

func (s *SlipAssembler) payload(slip layout.Slip) ipsqr.Payload {
	text := s.engine.Text()
	p := ipsqr.BuildForAccount(slip.Account, ipsqr.Context{
		RecipientName:    text.RecipientName(slip.Building),
		RecipientAddress: slip.Building.Address,
		RecipientCity:    slip.Building.City,
		Amount:           slip.Amount,
		Reference:        slip.Reference,
		Purpose:          text.Purpose(slip.Building),
		PayerName:        slip.Apartment.OwnerName,
		PayerAddress:     text.PayerAddress(slip.Building, slip.Apartment),
		PayerCity:        slip.Building.City,
	})
	if s.omitPayer {
		p = p.WithoutPayer()
	}
	return p
}

// fetchAll fetches every QR image with bounded parallelism. Results are kept
// by index; a failure leaves a nil entry.
func (s *SlipAssembler) fetchAll(ctx context.Context, slips []layout.Slip) [][]byte {
	images := make([][]byte, len(slips))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range slips {
		g.Go(func() error {
			images[i] = s.fetch(ctx, slips[i])
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func (s *SlipAssembler) fetch(ctx context.Context, slip layout.Slip) []byte {
	start := time.Now()
	img, err := s.provider.Fetch(ctx, s.payload(slip), s.qrSize)
	if err != nil {
		metrics.ObserveQRFetch(s.qrSource, metrics.ResultError, time.Since(start))
		if errors.Is(err, qrimage.ErrDisabled) {
			return nil
		}
		s.logger.Warn("qr fetch failed",
			zap.Int("apartment", slip.Apartment.Number),
			zap.String("reference", slip.Reference.String()),
			zap.Error(err),
		)
		return nil
	}
	metrics.ObserveQRFetch(s.qrSource, metrics.ResultSuccess, time.Since(start))
	return img
}
