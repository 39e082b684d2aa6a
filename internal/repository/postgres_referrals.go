package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
)

// PostgresReferralsRepo stores one row per referral. Insertion order is
// preserved by the seq bigserial column; the merge of Update runs inside
// a transaction with the row locked FOR UPDATE.
type PostgresReferralsRepo struct {
	db *sql.DB
}

func NewPostgresReferralsRepo(db *sql.DB) *PostgresReferralsRepo {
	return &PostgresReferralsRepo{db: db}
}

var _ ReferralsRepo = (*PostgresReferralsRepo)(nil)

const referralColumns = `
	id,
	created_at,
	updated_at,
	referrer_name,
	referrer_email,
	lead_name,
	lead_address,
	lead_phone,
	COALESCE(lead_email, '') AS lead_email,
	COALESCE(lead_notes, '') AS lead_notes,
	status,
	COALESCE(assigned_setter, '') AS assigned_setter,
	incentive_amount,
	incentive_status,
	email_day0_sent,
	email_day3_sent,
	email_day7_sent,
	last_contact_date
`

func scanReferral(row interface{ Scan(...any) error }) (domain.Referral, error) {
	var rec domain.Referral
	var updatedAt, lastContact sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.CreatedAt,
		&updatedAt,
		&rec.ReferrerName,
		&rec.ReferrerEmail,
		&rec.LeadName,
		&rec.LeadAddress,
		&rec.LeadPhone,
		&rec.LeadEmail,
		&rec.LeadNotes,
		&rec.Status,
		&rec.AssignedSetter,
		&rec.IncentiveAmount,
		&rec.IncentiveStatus,
		&rec.EmailDay0Sent,
		&rec.EmailDay3Sent,
		&rec.EmailDay7Sent,
		&lastContact,
	)
	if err != nil {
		return domain.Referral{}, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		rec.UpdatedAt = &t
	}
	if lastContact.Valid {
		t := lastContact.Time.UTC()
		rec.LastContactDate = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func (r *PostgresReferralsRepo) Create(ctx context.Context, sub domain.NewReferral) (*domain.Referral, error) {
	rec := newRecord(sub)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO referrals (
			id, created_at, referrer_name, referrer_email,
			lead_name, lead_address, lead_phone, lead_email, lead_notes,
			status, assigned_setter, incentive_amount, incentive_status,
			email_day0_sent, email_day3_sent, email_day7_sent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rec.ID, rec.CreatedAt,
		rec.ReferrerName, rec.ReferrerEmail,
		rec.LeadName, rec.LeadAddress, rec.LeadPhone, rec.LeadEmail, rec.LeadNotes,
		rec.Status, rec.AssignedSetter, rec.IncentiveAmount, rec.IncentiveStatus,
		rec.EmailDay0Sent, rec.EmailDay3Sent, rec.EmailDay7Sent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert referral: %w", err)
	}
	return &rec, nil
}

func (r *PostgresReferralsRepo) List(ctx context.Context) ([]domain.Referral, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+referralColumns+` FROM referrals ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer rows.Close()

	var records []domain.Referral
	for rows.Next() {
		rec, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return records, nil
}

func (r *PostgresReferralsRepo) Update(ctx context.Context, id string, patch map[string]any) (*domain.Referral, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanReferral(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock referral: %w", err)
	}

	merged, err := applyPatch(rec, patch)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE referrals SET
			updated_at = $2,
			referrer_name = $3,
			referrer_email = $4,
			lead_name = $5,
			lead_address = $6,
			lead_phone = $7,
			lead_email = $8,
			lead_notes = $9,
			status = $10,
			assigned_setter = $11,
			incentive_amount = $12,
			incentive_status = $13,
			email_day0_sent = $14,
			email_day3_sent = $15,
			email_day7_sent = $16,
			last_contact_date = $17
		 WHERE id = $1`,
		merged.ID, merged.UpdatedAt,
		merged.ReferrerName, merged.ReferrerEmail,
		merged.LeadName, merged.LeadAddress, merged.LeadPhone, merged.LeadEmail, merged.LeadNotes,
		merged.Status, merged.AssignedSetter, merged.IncentiveAmount, merged.IncentiveStatus,
		merged.EmailDay0Sent, merged.EmailDay3Sent, merged.EmailDay7Sent,
		merged.LastContactDate,
	)
	if err != nil {
		return nil, fmt.Errorf("update referral: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &merged, nil
}
