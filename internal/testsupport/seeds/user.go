package seeds

import (
	"context"
	"time"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/internal/testsupport"
)

// UserBuilder provides a fluent API for creating metrics users
type UserBuilder struct {
	w      metrics.Writer
	ctx    context.Context
	entity metrics.UserRecord
	staff  bool
}

// NewUserBuilder creates a new UserBuilder with sensible defaults
func NewUserBuilder(w metrics.Writer, ctx context.Context) *UserBuilder {
	now := time.Now().UTC().Truncate(time.Millisecond)
	username := testsupport.UniqueUsername()
	return &UserBuilder{
		w:   w,
		ctx: ctx,
		entity: metrics.UserRecord{
			Username:     username,
			Email:        username + "@test.local",
			FullName:     "Test User",
			SignupAt:     now,
			LastSigninAt: now,
		},
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.entity.Username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.entity.Email = email
	return b
}

// WithFullName sets the display name
func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.entity.FullName = name
	return b
}

// WithSignupAt sets the signup time
func (b *UserBuilder) WithSignupAt(t time.Time) *UserBuilder {
	b.entity.SignupAt = t
	return b
}

// WithLastSigninAt sets the last signin time
func (b *UserBuilder) WithLastSigninAt(t time.Time) *UserBuilder {
	b.entity.LastSigninAt = t
	return b
}

// WithRoles sets the account roles
func (b *UserBuilder) WithRoles(roles ...string) *UserBuilder {
	b.entity.Roles = roles
	return b
}

// AsStaff marks the user as KBase staff
func (b *UserBuilder) AsStaff() *UserBuilder {
	b.staff = true
	return b
}

// Build returns the record without writing it
func (b *UserBuilder) Build() metrics.UserRecord {
	return b.entity
}

// Upsert writes the user and returns the record
func (b *UserBuilder) Upsert() (metrics.UserRecord, error) {
	_, err := b.w.UpdateUserRecords(b.ctx, metrics.UserFilter{Username: b.entity.Username}, b.entity, b.staff)
	if err != nil {
		return metrics.UserRecord{}, err
	}
	return b.entity, nil
}
