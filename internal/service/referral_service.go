package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/repository"
)

// requiredFields must all be non-empty for a submission to reach the
// store. Matches the public form's required inputs.
var requiredFields = []string{
	"referrerName",
	"referrerEmail",
	"leadName",
	"leadAddress",
	"leadPhone",
}

// ValidationError reports which required submission fields were missing
// or empty. The store is never touched when this is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// PipelineStats is the admin dashboard summary, derived from the full
// collection on every call. PendingIncentives sums incentiveAmount over
// closed referrals whose incentive has not been paid out yet.
type PipelineStats struct {
	Total             int `json:"total"`
	Submitted         int `json:"submitted"`
	Contacted         int `json:"contacted"`
	Appointment       int `json:"appointment"`
	Closed            int `json:"closed"`
	Lost              int `json:"lost"`
	PendingIncentives int `json:"pendingIncentives"`
}

// ReferralService validates and shapes requests at the boundary; all
// state changes go through the injected ReferralsRepo.
type ReferralService struct {
	repo   repository.ReferralsRepo
	logger *zap.Logger
}

func NewReferralService(repo repository.ReferralsRepo, logger *zap.Logger) *ReferralService {
	return &ReferralService{repo: repo, logger: logger}
}

// Submit validates the five required fields and creates the record.
func (s *ReferralService) Submit(ctx context.Context, sub domain.NewReferral) (*domain.Referral, error) {
	var missing []string
	values := map[string]string{
		"referrerName":  sub.ReferrerName,
		"referrerEmail": sub.ReferrerEmail,
		"leadName":      sub.LeadName,
		"leadAddress":   sub.LeadAddress,
		"leadPhone":     sub.LeadPhone,
	}
	for _, f := range requiredFields {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	rec, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.logger.Info("referral submitted",
		zap.String("id", rec.ID),
		zap.String("referrer", rec.ReferrerName))
	return rec, nil
}

// FetchAll returns every record in creation order. Filtering is a
// presentation concern and happens client-side.
func (s *ReferralService) FetchAll(ctx context.Context) ([]domain.Referral, error) {
	return s.repo.List(ctx)
}

// ApplyUpdate merges patch into an existing record. Which fields may be
// patched is deliberately unrestricted beyond the id/createdAt
// protection enforced by the store.
func (s *ReferralService) ApplyUpdate(ctx context.Context, id string, patch map[string]any) (*domain.Referral, error) {
	if id == "" {
		return nil, &ValidationError{Fields: []string{"id"}}
	}
	rec, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("referral updated",
		zap.String("id", rec.ID),
		zap.String("status", rec.Status))
	return rec, nil
}

// Stats derives the dashboard summary from the full collection.
func (s *ReferralService) Stats(ctx context.Context) (*PipelineStats, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &PipelineStats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case domain.StatusSubmitted:
			stats.Submitted++
		case domain.StatusContacted:
			stats.Contacted++
		case domain.StatusAppointment:
			stats.Appointment++
		case domain.StatusClosed:
			stats.Closed++
		case domain.StatusLost:
			stats.Lost++
		}
		if r.Status == domain.StatusClosed && r.IncentiveStatus == domain.IncentivePending {
			stats.PendingIncentives += r.IncentiveAmount
		}
	}
	return stats, nil
}
