package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vladan-gibisoft/MC73/internal/audit"
	"github.com/vladan-gibisoft/MC73/internal/auth"
	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
	"github.com/vladan-gibisoft/MC73/internal/observability/metrics"
	"github.com/vladan-gibisoft/MC73/internal/qrimage"
	slipapp "github.com/vladan-gibisoft/MC73/internal/slip/application"
	"github.com/vladan-gibisoft/MC73/internal/slip/interfaces"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"

	defaultGenerateTimeout = 60 * time.Second
)

// Generator produces slip documents and QR previews.
type Generator interface {
	Generate(ctx context.Context, apartments []billing.Apartment, building billing.Building, period billing.Period) (*slipapp.Result, error)
	QRImage(ctx context.Context, apartment billing.Apartment, building billing.Building, period billing.Period) ([]byte, error)
}

// Handler serves slip downloads for one building.
type Handler struct {
	repo      billing.Repository
	generator Generator
	text      layout.Text
	audit     audit.Logger
	logger    *zap.Logger
	validate  *validator.Validate
	now       func() time.Time
	timeout   time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithAuditLogger records exports. Without it nothing is audited.
func WithAuditLogger(l audit.Logger) Option {
	return func(h *Handler) {
		h.audit = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithGenerateTimeout bounds a single document generation.
func WithGenerateTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithNow overrides the clock used to validate periods.
func WithNow(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs a handler.
func NewHandler(repo billing.Repository, generator Generator, text layout.Text, opts ...Option) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("slip handler: nil repository")
	}
	if generator == nil {
		return nil, errors.New("slip handler: nil generator")
	}
	h := &Handler{
		repo:      repo,
		generator: generator,
		text:      text.Merge(layout.DefaultText()),
		logger:    zap.NewNop(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
		timeout:   defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the slip routes on r, typically under /api/v1.
func (h *Handler) Register(r chi.Router) {
	r.Get("/slips", h.handleSlips)
	r.Get("/slips/summary.xlsx", h.handleSheet)
	r.Get("/apartments/{number}/slip", h.handleApartmentSlip)
	r.Get("/apartments/{number}/qr.png", h.handleQR)
}

type periodQuery struct {
	Month int `validate:"min=1,max=12"`
	Year  int `validate:"min=2020"`
}

type apartmentParam struct {
	Number int `validate:"min=1,max=99"`
}

func (h *Handler) handleSlips(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	period, err := h.parsePeriod(r)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}
	building, apartments, err := h.loadAll(r.Context())
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	doc, err := h.generator.Generate(ctx, apartments, *building, period)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}

	writeDocument(w, doc)
	h.logAudit(r, audit.ActionSlipsExport, "slips", period.String(), period, map[string]any{
		"generation_id": doc.ID,
		"slips":         doc.Slips,
		"pages":         doc.Pages,
		"missing_qr":    doc.MissingQR,
	})
}

func (h *Handler) handleApartmentSlip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	period, apartment, building, err := h.loadApartment(r)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	doc, err := h.generator.Generate(ctx, []billing.Apartment{*apartment}, *building, period)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}
	doc.Filename = fmt.Sprintf("uplatnica_%d_%02d_stan_%02d.pdf", period.Year, period.Month, apartment.Number)

	writeDocument(w, doc)
	h.logAudit(r, audit.ActionSlipExport, "apartment", strconv.Itoa(apartment.Number), period, map[string]any{
		"generation_id": doc.ID,
		"missing_qr":    len(doc.MissingQR) > 0,
	})
}

func (h *Handler) handleSheet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	period, err := h.parsePeriod(r)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}
	building, apartments, err := h.loadAll(r.Context())
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}
	data, err := interfaces.BuildBillingSheetXLSX(*building, apartments, period, h.text)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}

	writeAttachment(w, contentTypeXLSX, period.SheetFilename(), data)
	h.logAudit(r, audit.ActionSheetExport, "sheet", period.String(), period, map[string]any{
		"apartments": len(apartments),
	})
}

func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("png", result, time.Since(start))
	}()

	period, apartment, building, err := h.loadApartment(r)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}
	img, err := h.generator.QRImage(r.Context(), *apartment, *building, period)
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
	h.logAudit(r, audit.ActionQRPreview, "apartment", strconv.Itoa(apartment.Number), period, nil)
}

func (h *Handler) parsePeriod(r *http.Request) (billing.Period, error) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return billing.Period{}, fmt.Errorf("%w: month must be a number", billing.ErrInvalidPeriod)
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return billing.Period{}, fmt.Errorf("%w: year must be a number", billing.ErrInvalidPeriod)
	}
	if err := h.validate.Struct(periodQuery{Month: month, Year: year}); err != nil {
		return billing.Period{}, fmt.Errorf("%w: %w", billing.ErrInvalidPeriod, err)
	}
	period := billing.Period{Month: month, Year: year}
	if err := period.Validate(h.now()); err != nil {
		return billing.Period{}, err
	}
	return period, nil
}

func (h *Handler) parseApartment(r *http.Request) (int, error) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return 0, fmt.Errorf("%w: apartment number must be a number", billing.ErrInvalidApartment)
	}
	if err := h.validate.Struct(apartmentParam{Number: number}); err != nil {
		return 0, fmt.Errorf("%w: %w", billing.ErrInvalidApartment, err)
	}
	return number, nil
}

func (h *Handler) loadAll(ctx context.Context) (*billing.Building, []billing.Apartment, error) {
	building, err := h.repo.Building(ctx)
	if err != nil {
		return nil, nil, err
	}
	apartments, err := h.repo.ListApartments(ctx)
	if err != nil {
		return nil, nil, err
	}
	return building, apartments, nil
}

func (h *Handler) loadApartment(r *http.Request) (billing.Period, *billing.Apartment, *billing.Building, error) {
	period, err := h.parsePeriod(r)
	if err != nil {
		return billing.Period{}, nil, nil, err
	}
	number, err := h.parseApartment(r)
	if err != nil {
		return billing.Period{}, nil, nil, err
	}
	building, err := h.repo.Building(r.Context())
	if err != nil {
		return billing.Period{}, nil, nil, err
	}
	apartment, err := h.repo.Apartment(r.Context(), number)
	if err != nil {
		return billing.Period{}, nil, nil, err
	}
	return period, apartment, building, nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("slip request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	http.Error(w, message, status)
}

func statusFor(err error) (int, string) {
	var upstream *qrimage.UpstreamError
	var network *qrimage.NetworkError
	switch {
	case errors.Is(err, billing.ErrInvalidPeriod), errors.Is(err, billing.ErrInvalidApartment):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, billing.ErrEmptyInput):
		return http.StatusNotFound, "no apartments"
	case errors.Is(err, billing.ErrApartmentNotFound), errors.Is(err, billing.ErrBuildingNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, bankaccount.ErrInvalidFormat):
		return http.StatusUnprocessableEntity, "building bank account is invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "generation timed out"
	case errors.As(err, &upstream), errors.As(err, &network), errors.Is(err, qrimage.ErrDisabled):
		return http.StatusBadGateway, "qr service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeDocument(w http.ResponseWriter, doc *slipapp.Result) {
	w.Header().Set("X-Generation-ID", doc.ID)
	w.Header().Set("X-Slips-Missing-QR", joinNumbers(doc.MissingQR))
	writeAttachment(w, contentTypePDF, doc.Filename, doc.Content)
}

func joinNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) logAudit(r *http.Request, action, resourceType, resourceID string, period billing.Period, meta map[string]any) {
	if h.audit == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	err := h.audit.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Period:       period.String(),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
