package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/store"
)

// referralsKey holds the whole collection as one JSON document, same
// layout as the file backend. Kept as a single value so the read-merge-
// write sequence stays a single Get/Set pair under the repo mutex.
const referralsKey = "referrals:all"

// KVReferralsRepo persists the collection in a key-value store (Redis in
// production, a fake in tests). The in-process mutex serializes writers;
// the service owns the collection, so no cross-process locking is needed.
type KVReferralsRepo struct {
	mu sync.Mutex
	kv store.KV
}

func NewKVReferralsRepo(kv store.KV) *KVReferralsRepo {
	return &KVReferralsRepo{kv: kv}
}

var _ ReferralsRepo = (*KVReferralsRepo)(nil)

func (r *KVReferralsRepo) load(ctx context.Context) ([]domain.Referral, error) {
	val, err := r.kv.Get(ctx, referralsKey)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	var records []domain.Referral
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		return nil, fmt.Errorf("decode referrals: %w", err)
	}
	return records, nil
}

func (r *KVReferralsRepo) save(ctx context.Context, records []domain.Referral) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode referrals: %w", err)
	}
	if err := r.kv.Set(ctx, referralsKey, string(data), 0); err != nil {
		return fmt.Errorf("save referrals: %w", err)
	}
	return nil
}

func (r *KVReferralsRepo) Create(ctx context.Context, sub domain.NewReferral) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rec := newRecord(sub)
	records = append(records, rec)
	if err := r.save(ctx, records); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *KVReferralsRepo) List(ctx context.Context) ([]domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

func (r *KVReferralsRepo) Update(ctx context.Context, id string, patch map[string]any) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	merged, err := applyPatch(records[idx], patch)
	if err != nil {
		return nil, err
	}
	records[idx] = merged
	if err := r.save(ctx, records); err != nil {
		return nil, err
	}
	return &merged, nil
}
