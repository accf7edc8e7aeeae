package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"memberlink/internal/identity/models"
	"memberlink/pkg/platform/sentinel"
)

// InMemory keeps records in insertion order for tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	records []*models.MemberRecord
	byEmail map[string]*models.MemberRecord
	byID    map[string]*models.MemberRecord
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		byEmail: make(map[string]*models.MemberRecord),
		byID:    make(map[string]*models.MemberRecord),
		now:     time.Now,
	}
}

// Seed inserts records without the uniqueness check so tests can stage
// inconsistent registries.
func (s *InMemory) Seed(records ...models.MemberRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		rec := r
		s.fillDefaults(&rec)
		s.insertLocked(&rec)
	}
}

// Snapshot returns copies of all records in insertion order.
func (s *InMemory) Snapshot() []models.MemberRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MemberRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out
}

func (s *InMemory) ListAll(_ context.Context) ([]models.MemberRecord, error) {
	return s.Snapshot(), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.MemberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *InMemory) Create(_ context.Context, record *models.MemberRecord) error {
	if record == nil {
		return fmt.Errorf("member record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.NormalizedEmail()
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("member email must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	s.fillDefaults(record)
	rec := *record
	s.insertLocked(&rec)
	return nil
}

func (s *InMemory) LinkAccount(_ context.Context, memberID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[memberID]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.AccountID = accountID
	return nil
}

func (s *InMemory) UpdateStatus(_ context.Context, memberID string, status models.MemberStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[memberID]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *InMemory) fillDefaults(r *models.MemberRecord) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Email = models.NormalizeEmail(r.Email)
	if r.Status == "" {
		r.Status = models.MemberStatusInactive
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
}

func (s *InMemory) insertLocked(r *models.MemberRecord) {
	s.records = append(s.records, r)
	s.byID[r.ID] = r
	if _, exists := s.byEmail[r.Email]; !exists {
		s.byEmail[r.Email] = r
	}
}

var _ Store = (*InMemory)(nil)
