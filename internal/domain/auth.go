package domain

import "time"

// Token describes an issued bearer credential.
type Token struct {
	Value     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
