package services

import (
	"sync"
	"time"

	"order_tracker/internal/cache"
	"order_tracker/internal/ordercode"
	"order_tracker/internal/pricing"
	"order_tracker/internal/sheet"
)

// DefaultResultTTL bounds how long a found result stays available to backup
// and export calls.
const DefaultResultTTL = 12 * time.Hour

// Session owns everything a tracker remembers between lookups: the parsed
// sheet and its column map, the pricing documents and the latest found result
// per code. Callers create one and pass it to every TrackerService call.
type Session struct {
	mu      sync.RWMutex
	rows    []sheet.Row
	columns sheet.ColumnMap
	loaded  bool

	prices        pricing.Prices
	promo         pricing.Promo
	pricingLoaded bool

	results   *cache.TTLCache[string, *LookupResult]
	resultTTL time.Duration
}

// NewSession keeps found results for resultTTL; zero or less means
// DefaultResultTTL.
func NewSession(resultTTL time.Duration) *Session {
	if resultTTL <= 0 {
		resultTTL = DefaultResultTTL
	}
	return &Session{
		results:   cache.NewTTLCache[string, *LookupResult](time.Minute),
		resultTTL: resultTTL,
	}
}

func (s *Session) sheetCache() ([]sheet.Row, sheet.ColumnMap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows, s.columns, s.loaded
}

func (s *Session) storeSheet(rows []sheet.Row, columns sheet.ColumnMap) {
	s.mu.Lock()
	s.rows, s.columns, s.loaded = rows, columns, true
	s.mu.Unlock()
}

func (s *Session) pricingCache() (pricing.Prices, pricing.Promo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices, s.promo, s.pricingLoaded
}

func (s *Session) storePricing(prices pricing.Prices, promo pricing.Promo) {
	s.mu.Lock()
	s.prices, s.promo, s.pricingLoaded = prices, promo, true
	s.mu.Unlock()
}

// LastResult returns the most recent found result for code.
func (s *Session) LastResult(code string) (*LookupResult, bool) {
	return s.results.Get(ordercode.Normalize(code))
}

// remember keeps a found result for later backup and export calls. Any other
// outcome forgets what was stored for the code, so the last lookup wins.
func (s *Session) remember(result *LookupResult) {
	key := ordercode.Normalize(result.Code)
	if result.Outcome != OutcomeFound {
		s.results.Delete(key)
		return
	}
	s.results.Set(key, result, s.resultTTL)
}
