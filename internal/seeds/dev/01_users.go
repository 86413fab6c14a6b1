package dev

import (
	"context"
	"time"

	"kbmetrics/internal/testsupport/seeds"
)

// Development accounts. Staff users are excluded from most reports, so
// the set mixes both kinds.
var devUsers = []struct {
	username string
	fullName string
	staff    bool
}{
	{"dev_staff", "Dana Staff", true},
	{"dev_alice", "Alice Analyst", false},
	{"dev_bob", "Bob Biologist", false},
}

// SeedUsers upserts the development users (idempotent)
func SeedUsers(ctx context.Context, s *seeds.Seeder) error {
	log := s.Log()
	signup := time.Date(2018, 1, 15, 9, 0, 0, 0, time.UTC)

	for _, u := range devUsers {
		b := s.WithContext(ctx).User().
			WithUsername(u.username).
			WithEmail(u.username + "@kbase.local").
			WithFullName(u.fullName).
			WithSignupAt(signup).
			WithLastSigninAt(time.Now().UTC().Truncate(time.Millisecond))
		if u.staff {
			b = b.AsStaff().WithRoles("KBaseStaff")
		}

		if _, err := b.Upsert(); err != nil {
			return err
		}
		log.Infow("Seeded user", "username", u.username, "staff", u.staff)
	}

	return nil
}
