package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/repository"
)

func newTestService() *ReferralService {
	return NewReferralService(repository.NewMemoryReferralsRepo(), zap.NewNop())
}

func validSubmission() domain.NewReferral {
	return domain.NewReferral{
		ReferrerName:  "John Smith",
		ReferrerEmail: "john@x.com",
		LeadName:      "Jane Doe",
		LeadAddress:   "123 Main St",
		LeadPhone:     "555-1234",
	}
}

func TestSubmit_ValidCreatesWithDefaults(t *testing.T) {
	svc := newTestService()

	rec, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, domain.StatusSubmitted, rec.Status)
	require.Equal(t, 500, rec.IncentiveAmount)
	require.Equal(t, domain.IncentivePending, rec.IncentiveStatus)
}

func TestSubmit_MissingFieldsAreNamed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		wreck func(s *domain.NewReferral)
		field string
	}{
		{"referrer name", func(s *domain.NewReferral) { s.ReferrerName = "" }, "referrerName"},
		{"referrer email", func(s *domain.NewReferral) { s.ReferrerEmail = "" }, "referrerEmail"},
		{"lead name", func(s *domain.NewReferral) { s.LeadName = "" }, "leadName"},
		{"lead address", func(s *domain.NewReferral) { s.LeadAddress = "" }, "leadAddress"},
		{"lead phone", func(s *domain.NewReferral) { s.LeadPhone = "" }, "leadPhone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.wreck(&sub)
			_, err := svc.Submit(ctx, sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, []string{tc.field}, verr.Fields)
		})
	}

	// None of the failed submissions reached the store.
	records, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSubmit_AllFieldsMissing(t *testing.T) {
	svc := newTestService()

	_, err := svc.Submit(context.Background(), domain.NewReferral{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t,
		[]string{"referrerName", "referrerEmail", "leadName", "leadAddress", "leadPhone"},
		verr.Fields)
}

func TestSubmit_OptionalFieldsDefaultEmpty(t *testing.T) {
	svc := newTestService()

	rec, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.Equal(t, "", rec.LeadEmail)
	require.Equal(t, "", rec.LeadNotes)
}

func TestApplyUpdate_EmptyID(t *testing.T) {
	svc := newTestService()

	_, err := svc.ApplyUpdate(context.Background(), "", map[string]any{"status": domain.StatusClosed})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"id"}, verr.Fields)
}

func TestApplyUpdate_UnknownIDSurfacesNotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.ApplyUpdate(context.Background(), "nonexistent-id", map[string]any{"status": domain.StatusClosed})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApplyUpdate_AnyStatusTransitionAllowed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Submit(ctx, validSubmission())
	require.NoError(t, err)

	// No transition matrix: closed can go straight back to submitted,
	// and values outside the known set pass through untouched.
	for _, status := range []string{
		domain.StatusClosed,
		domain.StatusSubmitted,
		domain.StatusLost,
		domain.StatusAppointment,
		"on-hold",
	} {
		updated, err := svc.ApplyUpdate(ctx, rec.ID, map[string]any{"status": status})
		require.NoError(t, err)
		require.Equal(t, status, updated.Status)
	}
}

func TestStats_DerivedFromCollection(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := svc.Submit(ctx, validSubmission())
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	_, err := svc.ApplyUpdate(ctx, ids[0], map[string]any{"status": domain.StatusContacted})
	require.NoError(t, err)
	_, err = svc.ApplyUpdate(ctx, ids[1], map[string]any{"status": domain.StatusClosed})
	require.NoError(t, err)
	_, err = svc.ApplyUpdate(ctx, ids[2], map[string]any{
		"status":          domain.StatusClosed,
		"incentiveStatus": domain.IncentivePaid,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 2, stats.Submitted)
	require.Equal(t, 1, stats.Contacted)
	require.Equal(t, 2, stats.Closed)
	require.Equal(t, 0, stats.Lost)
	// Only the closed-and-unpaid referral counts toward the payout total.
	require.Equal(t, 500, stats.PendingIncentives)
}
