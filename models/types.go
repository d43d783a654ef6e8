package models

import "time"

// Fee status constants
const (
	FeePaid    = "paid"
	FeePending = "pending"
)

// Role tags a session with the kind of identity behind it.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// MaxMemberChoices is the number of member candidates a ballot may name in
// addition to the president.
const MaxMemberChoices = 10

// Domain types

type Member struct {
	ID             string `json:"id"`
	MemberNumber   string `json:"member_number"`
	Name           string `json:"name"`
	FeeStatus      string `json:"fee_status"`
	SecretHash     string `json:"-"` // Never expose in JSON
	HasVoted       bool   `json:"has_voted"`
	EthicsAccepted *bool  `json:"ethics_accepted"`
}

// MemberUpsert is one normalized roster row ready to be stored.
type MemberUpsert struct {
	MemberNumber string
	Name         string
	FeeStatus    string
	SecretHash   string
}

type AdminUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type Candidate struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	PhotoURL       string `json:"photo_url"`
	PresidentVotes int64  `json:"president_votes"`
	MemberVotes    int64  `json:"member_votes"`
}

// CandidateProfile is a candidate without its counters.
type CandidateProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
}

// CandidatePatch updates a profile; nil fields keep their stored value.
type CandidatePatch struct {
	ID       string
	Name     string
	Bio      *string
	PhotoURL *string
}

func (c Candidate) Profile() CandidateProfile {
	return CandidateProfile{ID: c.ID, Name: c.Name, Bio: c.Bio, PhotoURL: c.PhotoURL}
}

type CandidateResult struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PhotoURL       string `json:"photo_url"`
	PresidentVotes int64  `json:"president_votes"`
	MemberVotes    int64  `json:"member_votes"`
}

type Session struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	SubjectID string    `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type ElectionConfig struct {
	IsOpen          bool `json:"is_open"`
	ResultsRevealed bool `json:"results_revealed"`
}

// Ballot is the submitted form. It is never stored.
type Ballot struct {
	PresidentID    string   `json:"president_id"`
	MemberIDs      []string `json:"member_ids"` // nil when absent or null
	EthicsAccepted *bool    `json:"ethics_accepted"`
}

// ValidatedBallot carries the effective member set: the president first,
// then the remaining member choices, deduplicated.
type ValidatedBallot struct {
	PresidentID    string
	MemberIDs      []string
	EthicsAccepted bool
}

type Stats struct {
	Total          int            `json:"total"`
	Eligible       int            `json:"eligible"`
	Voted          int            `json:"voted"`
	EthicsAccepted int            `json:"ethics_accepted"`
	EthicsRejected int            `json:"ethics_rejected"`
	Config         ElectionConfig `json:"config"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Request types

type MemberLoginRequest struct {
	MemberNumber string `json:"member_number"`
	IDCard       string `json:"id_card"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ToggleElectionRequest struct {
	IsOpen *bool `json:"is_open"`
}

type ResetVotesRequest struct {
	Confirm bool `json:"confirm"`
}

// CandidateRequest leaves Bio and PhotoURL nil when the field is absent.
type CandidateRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Bio      *string `json:"bio"`
	PhotoURL *string `json:"photo_url"`
}

type ImportMembersRequest struct {
	Members []map[string]any `json:"members"`
}

type DeleteMembersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

// Response types

type MemberView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MemberNumber string `json:"member_number"`
	HasVoted     bool   `json:"has_voted"`
}

type AdminView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type SessionResponse struct {
	UserType Role `json:"user_type"`
	User     any  `json:"user"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ConfigResponse struct {
	Success bool           `json:"success"`
	Config  ElectionConfig `json:"config"`
}

type DeleteMembersResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
	Skipped int  `json:"skipped"`
}

type VoterStatusResponse struct {
	IsOpen   bool `json:"is_open"`
	HasVoted bool `json:"has_voted"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
