package models

import "time"

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

type User struct {
	ID       int64
	Email    string
	Username string
	PassHash []byte
	Role     Role
}

type ResetKind string

const (
	ResetManual ResetKind = "manual"
	ResetAuto   ResetKind = "auto"
)

// * ResetRequest is one row of a password reset ledger.
// SecretCode and UserID are only set for ResetAuto records.
type ResetRequest struct {
	Kind       ResetKind
	Email      string
	Hash       string
	SecretCode string
	UserID     int64
	CreatedAt  time.Time
}

// * Age returns how long ago the record was created relative to now.
func (r ResetRequest) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// Message is the payload put on the mail queue and consumed by mail_sender.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
