package domain

import "time"

// Pipeline statuses used by the admin dashboard. The store does not
// enforce membership; unknown values are stored as-is and filtered out
// (or shown raw) by the presentation layer.
const (
	StatusSubmitted   = "submitted"
	StatusContacted   = "contacted"
	StatusAppointment = "appointment"
	StatusClosed      = "closed"
	StatusLost        = "lost"
)

// Incentive payout states.
const (
	IncentivePending = "pending"
	IncentivePaid    = "paid"
)

// DefaultIncentiveAmount is the fixed reward owed to a referrer per
// qualifying referral, in whole currency units.
const DefaultIncentiveAmount = 500

// Referral links a referrer to a prospective lead and tracks the lead
// through the sales pipeline. ID and CreatedAt are assigned at creation
// and never change afterwards.
type Referral struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	ReferrerName  string `json:"referrerName"`
	ReferrerEmail string `json:"referrerEmail"`

	LeadName    string `json:"leadName"`
	LeadAddress string `json:"leadAddress"`
	LeadPhone   string `json:"leadPhone"`
	LeadEmail   string `json:"leadEmail"`
	LeadNotes   string `json:"leadNotes"`

	Status         string `json:"status"`
	AssignedSetter string `json:"assignedSetter"`

	IncentiveAmount int    `json:"incentiveAmount"`
	IncentiveStatus string `json:"incentiveStatus"`

	// Reserved for the automated outreach sequence; no in-scope
	// operation sets these yet.
	EmailDay0Sent bool `json:"emailDay0Sent"`
	EmailDay3Sent bool `json:"emailDay3Sent"`
	EmailDay7Sent bool `json:"emailDay7Sent"`

	LastContactDate *time.Time `json:"lastContactDate"`
}

// NewReferral carries the caller-supplied fields for a submission.
// Defaults (status, incentive, outreach flags) are applied by the store.
type NewReferral struct {
	ReferrerName  string `json:"referrerName"`
	ReferrerEmail string `json:"referrerEmail"`
	LeadName      string `json:"leadName"`
	LeadAddress   string `json:"leadAddress"`
	LeadPhone     string `json:"leadPhone"`
	LeadEmail     string `json:"leadEmail"`
	LeadNotes     string `json:"leadNotes"`
}
