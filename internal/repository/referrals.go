package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
)

var (
	// ErrNotFound means the update targeted an id with no record. The
	// store never upserts on update.
	ErrNotFound = errors.New("referral not found")

	// ErrInvalidPatch means a patch value does not fit the record field
	// it targets (e.g. a string for incentiveAmount). Nothing is applied.
	ErrInvalidPatch = errors.New("invalid patch")
)

// ReferralsRepo is the authoritative referral collection.
// Implementations must serialize the read-merge-write sequence of Update:
// two concurrent updates to different ids must both survive, and readers
// must never observe a half-merged record.
type ReferralsRepo interface {
	// Create materializes a record (id, createdAt, defaults) and appends
	// it to the collection. The record is persisted before Create returns.
	Create(ctx context.Context, sub domain.NewReferral) (*domain.Referral, error)

	// List returns a snapshot of all records in creation order.
	List(ctx context.Context) ([]domain.Referral, error)

	// Update merges patch into the record with the given id: present keys
	// overwrite, absent keys are untouched, id/createdAt are never
	// overwritten. Sets updatedAt. Persisted before Update returns.
	Update(ctx context.Context, id string, patch map[string]any) (*domain.Referral, error)
}

// newRecord applies the creation defaults shared by every backend.
func newRecord(sub domain.NewReferral) domain.Referral {
	return domain.Referral{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		ReferrerName:    sub.ReferrerName,
		ReferrerEmail:   sub.ReferrerEmail,
		LeadName:        sub.LeadName,
		LeadAddress:     sub.LeadAddress,
		LeadPhone:       sub.LeadPhone,
		LeadEmail:       sub.LeadEmail,
		LeadNotes:       sub.LeadNotes,
		Status:          domain.StatusSubmitted,
		AssignedSetter:  "",
		IncentiveAmount: domain.DefaultIncentiveAmount,
		IncentiveStatus: domain.IncentivePending,
	}
}

// applyPatch merges patch into a copy of rec. id and createdAt are
// stripped and re-pinned so a patch can never move them, regardless of
// what the caller sent. A type-mismatched value fails the whole patch.
func applyPatch(rec domain.Referral, patch map[string]any) (domain.Referral, error) {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" || k == "createdAt" {
			continue
		}
		clean[k] = v
	}

	buf, err := json.Marshal(clean)
	if err != nil {
		return domain.Referral{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	merged := rec
	if err := json.Unmarshal(buf, &merged); err != nil {
		return domain.Referral{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	merged.ID = rec.ID
	merged.CreatedAt = rec.CreatedAt
	now := time.Now().UTC()
	merged.UpdatedAt = &now
	return merged, nil
}
