package tokens

import (
	"context"
	"errors"
	"time"
)

// Token is a bearer credential authorizing crawler and admin operations.
// Expiry is the only deactivation mechanism; tokens are never deleted.
type Token struct {
	Token      string    `bson:"token" json:"token"`
	ExpiryDate time.Time `bson:"expiry_date" json:"expiry_date"`
}

// ErrExists is returned by Insert when the token string is already taken.
var ErrExists = errors.New("tokens: token already exists")

// Store provides token persistence operations. Find returns (nil, nil)
// for an absent token; errors are reserved for I/O failures.
type Store interface {
	Find(ctx context.Context, token string) (*Token, error)
	Insert(ctx context.Context, token string, expiry time.Time) error
}

// Validator checks presented credentials against the token store.
// Validation is never cached: expiry is evaluated against the store row on
// every call.
type Validator struct {
	store Store
}

func NewValidator(s Store) *Validator { return &Validator{store: s} }

// IsValid reports whether the presented token exists and has not expired.
// It fails closed: an absent token or a failed lookup both return false.
func (v *Validator) IsValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	t, err := v.store.Find(ctx, token)
	if err != nil || t == nil {
		return false
	}
	return !t.ExpiryDate.Before(time.Now())
}
