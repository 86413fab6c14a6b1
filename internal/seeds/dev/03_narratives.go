package dev

import (
	"context"
	"time"

	"kbmetrics/internal/testsupport/seeds"
)

// SeedNarratives upserts a couple of narrative versions per workspace
func SeedNarratives(ctx context.Context, s *seeds.Seeder) error {
	s = s.WithContext(ctx)
	saved := time.Now().UTC().Truncate(time.Millisecond)

	for version := int64(1); version <= 2; version++ {
		if _, err := s.Narrative().
			WithWorkspaceID(aliceWorkspace).
			WithObject(1, version).
			WithName("narrative_alice").
			WithNiceName("Alice's metagenome assembly").
			WithNumObj(3 * version).
			SavedBy("dev_alice", saved.Add(time.Duration(version)*time.Hour)).
			Upsert(); err != nil {
			return err
		}
	}

	if _, err := s.Narrative().
		WithWorkspaceID(bobWorkspace).
		WithObject(1, 1).
		WithName("narrative_bob").
		WithNiceName("Bob's RNA-seq").
		WithDesc("Expression analysis").
		SavedBy("dev_bob", saved).
		Upsert(); err != nil {
		return err
	}

	s.Log().Infow("Seeded narratives", "workspaces", []int64{aliceWorkspace, bobWorkspace})
	return nil
}
