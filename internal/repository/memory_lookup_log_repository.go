package repository

import (
	"sort"
	"sync"
	"time"

	"order_tracker/internal/models"
)

// DefaultMemoryLogCapacity caps the in-process lookup log.
const DefaultMemoryLogCapacity = 10000

type memoryLookupLogRepository struct {
	mu       sync.RWMutex
	entries  []models.LookupLog
	capacity int
	nextID   uint
	now      func() time.Time
}

// NewMemoryLookupLogRepository keeps the newest capacity entries in memory.
// It stands in for Postgres when no database is configured.
func NewMemoryLookupLogRepository(capacity int) LookupLogRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryLogCapacity
	}
	return &memoryLookupLogRepository{capacity: capacity, now: time.Now}
}

func (r *memoryLookupLogRepository) Create(entry *models.LookupLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	r.entries = append(r.entries, *entry)
	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append(r.entries[:0:0], r.entries[over:]...)
	}
	return nil
}

func (r *memoryLookupLogRepository) GetByOrderCode(orderCode string, limit int) ([]models.LookupLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.LookupLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].OrderCode != orderCode {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryLookupLogRepository) GetByDateRange(startDate, endDate time.Time) ([]models.LookupLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.LookupLog
	for _, e := range r.entries {
		if !e.CreatedAt.Before(startDate) && !e.CreatedAt.After(endDate) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryLookupLogRepository) CountByOutcome(since time.Time) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range r.entries {
		if !e.CreatedAt.Before(since) {
			counts[e.Outcome]++
		}
	}
	return counts, nil
}
