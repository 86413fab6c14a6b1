package dev

import (
	"context"
	"time"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/internal/testsupport/seeds"
)

// Workspaces the development users work in
const (
	aliceWorkspace int64 = 1001
	bobWorkspace   int64 = 1002
)

// SeedActivities records two weeks of daily activity ending today.
// Existing days are left untouched.
func SeedActivities(ctx context.Context, s *seeds.Seeder) error {
	s = s.WithContext(ctx)
	today := time.Now().UTC()

	var records []metrics.ActivityRecord
	for i := 0; i < 14; i++ {
		day := today.AddDate(0, 0, -i)

		records = append(records, s.Activity().
			WithUsername("dev_alice").
			WithWorkspaceID(aliceWorkspace).
			OnDay(day).
			WithNumModified(int64(i%4+1)).
			Build())

		if i%2 == 0 {
			records = append(records, s.Activity().
				WithUsername("dev_bob").
				WithWorkspaceID(bobWorkspace).
				OnDay(day).
				WithNumModified(int64(i+1)).
				Build())
		}
	}

	n, err := s.Activities(records...)
	if err != nil {
		return err
	}

	s.Log().Infow("Seeded daily activities", "inserted", n, "skipped", len(records)-n)
	return nil
}
