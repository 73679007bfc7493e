package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"order_tracker/internal/models"
	"order_tracker/internal/ordercode"
	"order_tracker/internal/repository"
)

var (
	ErrAuditDisabled = errors.New("lookup audit log is not configured")
	ErrBadRange      = errors.New("invalid date range")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	dateLayout          = "2006-01-02"
)

// OutcomeSummary counts lookups per outcome since a point in time.
type OutcomeSummary struct {
	Since  time.Time        `json:"since"`
	Total  int64            `json:"total"`
	Counts map[string]int64 `json:"counts"`
}

type AuditService interface {
	History(code string, limit int) ([]models.LookupLog, error)
	Between(from, to string) ([]models.LookupLog, error)
	Summary(since string) (*OutcomeSummary, error)
}

type auditService struct {
	logs repository.LookupLogRepository
	loc  *time.Location
	now  func() time.Time
}

// NewAuditService reads the lookup log. logs may be nil; every call then
// returns ErrAuditDisabled.
func NewAuditService(logs repository.LookupLogRepository, loc *time.Location) AuditService {
	if loc == nil {
		loc = time.UTC
	}
	return &auditService{logs: logs, loc: loc, now: time.Now}
}

// History lists the latest lookups of code, newest first.
func (s *auditService) History(code string, limit int) ([]models.LookupLog, error) {
	if s.logs == nil {
		return nil, ErrAuditDisabled
	}
	normalized := ordercode.Normalize(code)
	if normalized == "" {
		return nil, ErrEmptyCode
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	entries, err := s.logs.GetByOrderCode(normalized, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup history: %w", err)
	}
	return entries, nil
}

// Between lists lookups from the start of day from to the end of day to,
// both YYYY-MM-DD in the tracker's time zone.
func (s *auditService) Between(from, to string) ([]models.LookupLog, error) {
	if s.logs == nil {
		return nil, ErrAuditDisabled
	}
	start, err := s.parseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDay(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrBadRange, to, from)
	}

	entries, err := s.logs.GetByDateRange(start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("failed to load lookups: %w", err)
	}
	return entries, nil
}

// Summary counts lookups per outcome since the given day, or over the last
// 24 hours when since is empty.
func (s *auditService) Summary(since string) (*OutcomeSummary, error) {
	if s.logs == nil {
		return nil, ErrAuditDisabled
	}
	start := s.now().Add(-24 * time.Hour)
	if strings.TrimSpace(since) != "" {
		day, err := s.parseDay(since)
		if err != nil {
			return nil, err
		}
		start = day
	}

	counts, err := s.logs.CountByOutcome(start)
	if err != nil {
		return nil, fmt.Errorf("failed to count lookups: %w", err)
	}
	summary := &OutcomeSummary{Since: start, Counts: counts}
	for _, n := range counts {
		summary.Total += n
	}
	return summary, nil
}

func (s *auditService) parseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrBadRange, value)
	}
	return day, nil
}
