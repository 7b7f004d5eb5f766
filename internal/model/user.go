package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User owns a wallet balance plus the rules and schedules attached to it.
type User struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	CurrentBalance decimal.Decimal
}

// NewUser creates a user with an opening balance.
func NewUser(name, email, phoneNumber string, initialBalance decimal.Decimal, now time.Time) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("user: name is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("user: email is required")
	}

	return &User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          strings.ToLower(strings.TrimSpace(email)),
		PhoneNumber:    phoneNumber,
		CurrentBalance: initialBalance,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}, nil
}

// ApplyBalanceDelta shifts the running balance by a signed amount. It is the
// only balance mutation; callers derive the sign from the transaction
// direction.
func (u *User) ApplyBalanceDelta(delta decimal.Decimal, now time.Time) {
	u.CurrentBalance = u.CurrentBalance.Add(delta)
	u.UpdatedAt = now.UTC()
}
