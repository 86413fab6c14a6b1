package test

import (
	"context"
	"time"

	"kbmetrics/internal/testsupport/seeds"
)

// SeedActivities records a fixed week of activity in March 2018 so report
// queries have known answers
func SeedActivities(ctx context.Context, s *seeds.Seeder) error {
	s = s.WithContext(ctx)
	start := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	n, err := s.Activities(
		s.Activity().WithUsername("test_user").WithWorkspaceID(1).OnDay(start).WithNumModified(2).Build(),
		s.Activity().WithUsername("test_user").WithWorkspaceID(1).OnDay(start.AddDate(0, 0, 1)).Build(),
		s.Activity().WithUsername("test_staff").WithWorkspaceID(2).OnDay(start.AddDate(0, 0, 1)).Build(),
		s.Activity().WithUsername("test_user").WithWorkspaceID(3).OnDay(start.AddDate(0, 0, 6)).WithNumModified(7).Build(),
	)
	if err != nil {
		return err
	}

	s.Log().Infow("Seeded test activities", "inserted", n)
	return nil
}
