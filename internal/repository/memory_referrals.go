package repository

import (
	"context"
	"sync"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
)

// MemoryReferralsRepo keeps the collection in process memory. Used for
// dev and as the fallback when a durable backend is unreachable; records
// do not survive a restart.
type MemoryReferralsRepo struct {
	mu       sync.RWMutex
	records  []domain.Referral
	position map[string]int // id -> index into records
}

func NewMemoryReferralsRepo() *MemoryReferralsRepo {
	return &MemoryReferralsRepo{
		position: map[string]int{},
	}
}

var _ ReferralsRepo = (*MemoryReferralsRepo)(nil)

func (r *MemoryReferralsRepo) Create(_ context.Context, sub domain.NewReferral) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := newRecord(sub)
	r.position[rec.ID] = len(r.records)
	r.records = append(r.records, rec)
	return &rec, nil
}

func (r *MemoryReferralsRepo) List(_ context.Context) ([]domain.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Referral, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *MemoryReferralsRepo) Update(_ context.Context, id string, patch map[string]any) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.position[id]
	if !ok {
		return nil, ErrNotFound
	}
	merged, err := applyPatch(r.records[idx], patch)
	if err != nil {
		return nil, err
	}
	r.records[idx] = merged
	return &merged, nil
}
