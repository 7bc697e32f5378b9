package employee

import (
	"time"
)

type Employee struct {
	ID         string
	Code       string // biometric device / external ID
	FullName   string
	Department *string
	Position   *string
	PINHash    *string // bcrypt hash for clock-terminal login
	IsAdmin    bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
