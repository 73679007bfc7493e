package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"order_tracker/internal/dates"
	"order_tracker/internal/logger"
	"order_tracker/internal/metrics"
	"order_tracker/internal/models"
	"order_tracker/internal/ordercode"
	"order_tracker/internal/pricing"
	"order_tracker/internal/repository"
	"order_tracker/internal/sheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCode        = errors.New("order code is empty")
	ErrNoOrder          = errors.New("no order has been found for this code")
	ErrExportNotAllowed = errors.New("invoice export is not available for this order")
)

type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	outcomeError            = "error"
)

type PricingOutcome string

const (
	PricingNone        PricingOutcome = "none"
	PricingReady       PricingOutcome = "ready"
	PricingUnresolved  PricingOutcome = "unresolved"
	PricingUnavailable PricingOutcome = "unavailable"
)

const (
	messagePackageNotFound    = "package not found"
	messagePricingUnavailable = "pricing configuration is temporarily unavailable"
)

// InvoiceControls say what the invoice panel may offer for the order's
// finish date, compared with today as calendar days.
type InvoiceControls struct {
	ExportAllowed bool `json:"export_allowed"`
	LateWarning   bool `json:"late_warning"`
}

type LookupResult struct {
	Code             string                `json:"code"`
	Outcome          Outcome               `json:"status"`
	Forced           bool                  `json:"forced"`
	Order            *models.OrderRecord   `json:"order,omitempty"`
	ShowOrderCode    bool                  `json:"show_order_code"`
	Progress         models.ProgressStatus `json:"progress,omitempty"`
	ProgressColor    string                `json:"progress_color,omitempty"`
	FileStatus       models.FileStatus     `json:"file_status,omitempty"`
	FileStyle        string                `json:"file_style,omitempty"`
	CanRequestBackup bool                  `json:"can_request_backup"`
	Decoded          bool                  `json:"decoded"`
	Payload          *ordercode.Payload    `json:"payload,omitempty"`
	PricingOutcome   PricingOutcome        `json:"pricing_status"`
	PricingMessage   string                `json:"pricing_message,omitempty"`
	Invoice          *pricing.Invoice      `json:"invoice,omitempty"`
	Controls         InvoiceControls       `json:"controls"`
	LookedUpAt       time.Time             `json:"looked_up_at"`
}

type SheetSource interface {
	FetchCSV(ctx context.Context, force bool) (string, error)
}

type PricingSource interface {
	LoadConfig(ctx context.Context) (pricing.Prices, pricing.Promo, error)
}

type TrackerService interface {
	Lookup(ctx context.Context, sess *Session, code string, force bool) (*LookupResult, error)
	ExportableInvoice(sess *Session, code string) (*LookupResult, error)
}

type trackerService struct {
	sheet     SheetSource
	pricing   PricingSource
	calc      pricing.Calculator
	formatter dates.Formatter
	logs      repository.LookupLogRepository
	metrics   *metrics.Registry
	now       func() time.Time
}

// NewTrackerService wires the lookup pipeline. logs and reg may be nil.
func NewTrackerService(sheetSource SheetSource, pricingSource PricingSource, calc pricing.Calculator, formatter dates.Formatter, logs repository.LookupLogRepository, reg *metrics.Registry) TrackerService {
	return &trackerService{
		sheet:     sheetSource,
		pricing:   pricingSource,
		calc:      calc,
		formatter: formatter,
		logs:      logs,
		metrics:   reg,
		now:       time.Now,
	}
}

// Lookup finds the first sheet row whose order code matches code. A KYS code
// is also decoded and priced. A missing row is a result, not an error; only
// a failed sheet fetch returns an error, leaving the session cache as it was.
func (s *trackerService) Lookup(ctx context.Context, sess *Session, code string, force bool) (*LookupResult, error) {
	input := strings.TrimSpace(code)
	normalized := ordercode.Normalize(input)
	if normalized == "" {
		return nil, ErrEmptyCode
	}
	log := zap.L().With(
		zap.String("request_id", logger.RequestIDFromContext(ctx)),
		zap.String("order_code", normalized),
	)

	// Load rows, cached unless forced
	rows, columns, err := s.loadRows(ctx, sess, force)
	if err != nil {
		log.Error("failed to load order sheet", zap.Error(err))
		s.record(ctx, normalized, outcomeError, "", "", force)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	result := &LookupResult{
		Code:           input,
		Forced:         force,
		PricingOutcome: PricingNone,
		LookedUpAt:     s.now(),
	}

	// Find the first matching row
	row, ok := findRow(rows, columns, normalized)
	if !ok {
		result.Outcome = OutcomeNotFound
		sess.remember(result)
		s.record(ctx, normalized, string(result.Outcome), "", "", force)
		return result, nil
	}

	order := buildRecord(row, columns, s.formatter)
	result.Outcome = OutcomeFound
	result.Order = order
	result.Progress = models.ParseProgressStatus(order.ProgressStatus)
	result.ProgressColor = result.Progress.Color()
	result.FileStatus = models.ParseFileStatus(order.FileStatus)
	result.FileStyle = result.FileStatus.Style()
	result.CanRequestBackup = order.CanRequestBackup()

	// Decode self-describing codes
	if ordercode.HasPrefix(input) {
		payload, err := ordercode.Decode(input)
		switch {
		case err == nil:
			result.Decoded = true
			result.Payload = payload
		case errors.Is(err, ordercode.ErrBadBase64), errors.Is(err, ordercode.ErrBadJSON):
			log.Warn("failed to decode order code payload", zap.Error(err))
		default:
			log.Debug("order code carries no usable payload", zap.Error(err))
		}
	}
	result.ShowOrderCode = !result.Decoded

	packageID := ""
	if result.Decoded {
		packageID = result.Payload.PackageKey()
		if result.Payload.HasOrderDate() {
			if t, ok := dates.ParseDecodedOrderDate(result.Payload.OrderDate); ok {
				order.OrderDate = s.formatter.UIDate(t)
			} else {
				order.OrderDate = fmt.Sprint(result.Payload.OrderDate)
			}
		}
		s.price(ctx, sess, result, log)
		result.Controls = s.controls(order.FinishDateTime)
	}

	// Remember and record the lookup
	sess.remember(result)
	pricingOutcome := ""
	if result.Decoded {
		pricingOutcome = string(result.PricingOutcome)
	}
	s.record(ctx, normalized, string(result.Outcome), pricingOutcome, packageID, force)
	return result, nil
}

// ExportableInvoice returns the remembered result for code when its invoice
// may be exported today.
func (s *trackerService) ExportableInvoice(sess *Session, code string) (*LookupResult, error) {
	result, ok := sess.LastResult(code)
	if !ok || result.Outcome != OutcomeFound || result.Order == nil {
		return nil, ErrNoOrder
	}
	if result.Invoice == nil || !s.controls(result.Order.FinishDateTime).ExportAllowed {
		return nil, ErrExportNotAllowed
	}
	return result, nil
}

func (s *trackerService) loadRows(ctx context.Context, sess *Session, force bool) ([]sheet.Row, sheet.ColumnMap, error) {
	if !force {
		if rows, columns, ok := sess.sheetCache(); ok {
			return rows, columns, nil
		}
	}

	started := time.Now()
	text, err := s.sheet.FetchCSV(ctx, force)
	s.metrics.ObserveFetch("csv", started, err)
	if err != nil {
		return nil, nil, err
	}

	// Parse and map the header
	rows := sheet.Parse(text)
	var header sheet.Row
	if len(rows) > 0 {
		header = rows[0]
	}
	columns := sheet.MapColumns(header)
	sess.storeSheet(rows, columns)
	s.metrics.SetCachedRows(max(len(rows)-1, 0))
	return rows, columns, nil
}

func (s *trackerService) price(ctx context.Context, sess *Session, result *LookupResult, log *zap.Logger) {
	prices, promo, err := loadPricing(ctx, sess, s.pricing, s.metrics)
	if err != nil {
		log.Error("failed to load pricing configuration", zap.Error(err))
		result.PricingOutcome = PricingUnavailable
		result.PricingMessage = messagePricingUnavailable
		return
	}

	payload := result.Payload
	pkg, ok := prices.FindPackage(payload.PackageKey())
	if !ok {
		log.Warn("package not found in pricing configuration", zap.String("package_id", payload.PackageKey()))
		result.PricingOutcome = PricingUnresolved
		result.PricingMessage = messagePackageNotFound
		return
	}

	invoice := pricing.ComputeInvoice(s.calc, pkg, prices, promo, payload.Duration, payload.Deadline, result.Order.Revision)
	result.Invoice = &invoice
	result.PricingOutcome = PricingReady
}

func (s *trackerService) controls(finish *time.Time) InvoiceControls {
	if finish == nil {
		return InvoiceControls{}
	}
	today := s.formatter.DayKey(s.now())
	day := s.formatter.DayKey(*finish)
	return InvoiceControls{
		ExportAllowed: day == today,
		LateWarning:   day < today,
	}
}

func (s *trackerService) record(ctx context.Context, code, outcome, pricingOutcome, packageID string, forced bool) {
	s.metrics.ObserveLookup(outcome, pricingOutcome, forced)
	if s.logs == nil {
		return
	}

	entry := &models.LookupLog{
		RequestID:      logger.RequestIDFromContext(ctx),
		OrderCode:      code,
		Outcome:        outcome,
		PricingOutcome: pricingOutcome,
		PackageID:      packageID,
		Forced:         forced,
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	if err := s.logs.Create(entry); err != nil {
		zap.L().Warn("failed to record lookup", zap.String("order_code", code), zap.Error(err))
	}
}

// loadPricing returns the session's pricing documents, fetching them the
// first time. A failed fetch leaves the session untouched so the next call
// retries.
func loadPricing(ctx context.Context, sess *Session, src PricingSource, reg *metrics.Registry) (pricing.Prices, pricing.Promo, error) {
	if prices, promo, ok := sess.pricingCache(); ok {
		return prices, promo, nil
	}

	started := time.Now()
	prices, promo, err := src.LoadConfig(ctx)
	reg.ObserveFetch("pricing", started, err)
	if err != nil {
		return pricing.Prices{}, pricing.Promo{}, err
	}
	sess.storePricing(prices, promo)
	return prices, promo, nil
}

func findRow(rows []sheet.Row, columns sheet.ColumnMap, normalized string) (sheet.Row, bool) {
	if len(rows) < 2 {
		return nil, false
	}
	for _, row := range rows[1:] {
		if ordercode.Normalize(columns.Cell(row, sheet.ColumnOrderCode)) == normalized {
			return row, true
		}
	}
	return nil, false
}

func buildRecord(row sheet.Row, columns sheet.ColumnMap, formatter dates.Formatter) *models.OrderRecord {
	finishRaw := columns.Cell(row, sheet.ColumnFinishDate)
	order := &models.OrderRecord{
		Title:          orDash(columns.Cell(row, sheet.ColumnTitle)),
		ProgressStatus: columns.Cell(row, sheet.ColumnStatusProgress),
		OrderDate:      formatter.TrackerDate(columns.Cell(row, sheet.ColumnOrderDate)),
		FinishDate:     dates.FinishDate(finishRaw),
		BackupExpired:  orDash(columns.Cell(row, sheet.ColumnBackupExpired)),
		FileStatus:     columns.Cell(row, sheet.ColumnFileStatus),
		ProjectCode:    orDash(columns.Cell(row, sheet.ColumnProjectCode)),
		OrderCode:      orDash(columns.Cell(row, sheet.ColumnOrderCode)),
		Revision:       leadingInt(columns.Cell(row, sheet.ColumnRevision)),
	}
	if t, ok := dates.ParseDDMMYYYY(finishRaw); ok {
		order.FinishDateTime = &t
	}
	return order
}

// leadingInt reads the integer at the start of s ("3x" is 3), or 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return dates.Placeholder
	}
	return s
}
