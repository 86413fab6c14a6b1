package test

import (
	"context"
	"time"

	"kbmetrics/internal/testsupport/seeds"
)

// SeedUsers creates the minimal user set for e2e testing (idempotent)
func SeedUsers(ctx context.Context, s *seeds.Seeder) error {
	signup := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.WithContext(ctx).User().
		WithUsername("test_user").
		WithEmail("test@kbase.local").
		WithFullName("Test User").
		WithSignupAt(signup).
		WithLastSigninAt(signup).
		Upsert(); err != nil {
		return err
	}

	if _, err := s.User().
		WithUsername("test_staff").
		WithEmail("staff@kbase.local").
		WithFullName("Test Staff").
		WithSignupAt(signup).
		WithLastSigninAt(signup).
		WithRoles("KBaseStaff").
		AsStaff().
		Upsert(); err != nil {
		return err
	}

	s.Log().Info("Seeded test users")
	return nil
}
