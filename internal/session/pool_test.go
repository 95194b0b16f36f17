package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/models"
)

func poolOf(size int) []models.Track {
	years := make([]int, size)
	for i := range years {
		years[i] = 1950 + i%70
	}
	return makeTracks("pool", years...)
}

func TestDrawNoRepeats(t *testing.T) {
	env := newTestEnv(t, 7, &fakeCatalog{})
	sess := &models.Session{
		ID:           uuid.New(),
		PIN:          "TEST",
		State:        models.StatePlaying,
		PoolSnapshot: poolOf(100),
	}

	poolIDs := make(map[string]bool)
	for _, track := range sess.PoolSnapshot {
		poolIDs[track.ID] = true
	}

	drawn := make(map[string]bool)
	for i := 0; i < 50; i++ {
		track, err := env.svc.drawTrack(context.Background(), sess)
		if err != nil {
			t.Fatalf("draw %d error: %v", i, err)
		}
		if !poolIDs[track.ID] {
			t.Fatalf("draw %d returned %s, not a pool member", i, track.ID)
		}
		if drawn[track.ID] {
			t.Fatalf("draw %d repeated track %s", i, track.ID)
		}
		drawn[track.ID] = true
	}

	if len(drawn) != 50 {
		t.Fatalf("distinct draws = %d, want 50", len(drawn))
	}
}

func TestFallbackEngagementIsOneWay(t *testing.T) {
	primary := makeTracks("pri", 1970, 1980)
	fallback := makeTracks("fal", 1955, 1965, 1975, 1985, 1995)
	env := newTestEnv(t, 11, &fakeCatalog{fallback: fallback})

	sess := &models.Session{
		ID:           uuid.New(),
		PIN:          "TEST",
		State:        models.StatePlaying,
		PoolSnapshot: primary,
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.drawTrack(ctx, sess); err != nil {
			t.Fatalf("primary draw %d error: %v", i, err)
		}
	}
	if sess.FallbackEngaged {
		t.Fatal("fallback engaged while primary pool still had tracks")
	}

	track, err := env.svc.drawTrack(ctx, sess)
	if err != nil {
		t.Fatalf("fallback draw error: %v", err)
	}
	if !sess.FallbackEngaged {
		t.Fatal("fallback not engaged after primary exhausted")
	}

	fallbackIDs := make(map[string]bool)
	for _, f := range fallback {
		fallbackIDs[f.ID] = true
	}
	if !fallbackIDs[track.ID] {
		t.Fatalf("draw after exhaustion returned %s, not a fallback track", track.ID)
	}

	// Conceptually free a primary track; engagement must not revert.
	var used []string
	for _, id := range sess.UsedTrackIDs {
		if id != primary[0].ID {
			used = append(used, id)
		}
	}
	sess.UsedTrackIDs = used

	for {
		track, err := env.svc.drawTrack(ctx, sess)
		if errors.Is(err, errPoolExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("draw error: %v", err)
		}
		if !sess.FallbackEngaged {
			t.Fatal("fallback flag reverted")
		}
		if !fallbackIDs[track.ID] {
			t.Fatalf("draw returned freed primary track %s after fallback engaged", track.ID)
		}
	}
}

func TestDrawExhaustedSignalsTerminal(t *testing.T) {
	env := newTestEnv(t, 3, &fakeCatalog{})
	sess := &models.Session{
		ID:           uuid.New(),
		PIN:          "TEST",
		State:        models.StatePlaying,
		PoolSnapshot: makeTracks("only", 1990),
	}
	ctx := context.Background()

	if _, err := env.svc.drawTrack(ctx, sess); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if _, err := env.svc.drawTrack(ctx, sess); !errors.Is(err, errPoolExhausted) {
		t.Fatalf("err = %v, want pool exhausted", err)
	}
}
