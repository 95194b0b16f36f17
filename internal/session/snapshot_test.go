package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/models"
)

func TestSnapshotHidesMysteryTrackWhilePlaying(t *testing.T) {
	env := newTestEnv(t, 30, nil)
	sess, players := env.setupLobby(t, "Alice", "Bob")
	ctx := context.Background()

	if err := env.svc.StartGame(ctx, sess.PIN, players[0].ID); err != nil {
		t.Fatalf("start game error: %v", err)
	}

	view, err := env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.CurrentTrack == nil {
		t.Fatal("snapshot has no current track")
	}
	if view.CurrentTrack.ID == "" || view.CurrentTrack.PlaybackURI == "" {
		t.Fatal("playback reference missing from hidden track")
	}
	if view.CurrentTrack.Title != "" || view.CurrentTrack.Artist != "" || view.CurrentTrack.Year != 0 {
		t.Fatalf("mystery track leaked metadata while playing: %+v", view.CurrentTrack)
	}

	// Once the game ends the same track is fully visible.
	env.mutate(t, sess.PIN, func(s *models.Session) {
		s.State = models.StateFinished
	})
	view, err = env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.CurrentTrack.Title == "" || view.CurrentTrack.Year == 0 {
		t.Fatalf("track still hidden after game end: %+v", view.CurrentTrack)
	}
}

func TestSnapshotLegacyStealFields(t *testing.T) {
	env := newTestEnv(t, 31, nil)
	sess, players := env.setupLobby(t, "Alice", "Bob")
	ctx := context.Background()

	if err := env.svc.StartGame(ctx, sess.PIN, players[0].ID); err != nil {
		t.Fatalf("start game error: %v", err)
	}

	view, err := env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.IsStealPhase || view.StealPhaseEndsAt != nil || view.Steal != nil {
		t.Fatalf("steal fields set outside a steal phase: %+v", view)
	}

	activeID := env.activePlayer(t, sess.PIN).ID
	if err := env.svc.ConfirmTurn(ctx, sess.PIN, activeID, 0, nil); err != nil {
		t.Fatalf("confirm turn error: %v", err)
	}

	view, err = env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.Steal == nil || view.Steal.Phase != models.StealPhaseDecide {
		t.Fatalf("steal view = %+v, want decide phase", view.Steal)
	}
	if !view.IsStealPhase {
		t.Fatal("legacy IsStealPhase flag not set")
	}
	if view.StealPhaseEndsAt == nil || !view.StealPhaseEndsAt.Equal(view.Steal.Deadline) {
		t.Fatalf("legacy deadline = %v, want %v", view.StealPhaseEndsAt, view.Steal.Deadline)
	}
}

func TestSnapshotDerivesConnectivity(t *testing.T) {
	env := newTestEnv(t, 32, nil)
	sess, players := env.setupLobby(t, "Alice", "Bob")
	ctx := context.Background()

	env.presence.disconnect(players[1].ID)

	view, err := env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}

	byID := make(map[uuid.UUID]PlayerView)
	for _, p := range view.Players {
		byID[p.ID] = p
	}
	if !byID[players[0].ID].Connected {
		t.Fatal("recently seen player reported disconnected")
	}
	if byID[players[1].ID].Connected {
		t.Fatal("stale player reported connected")
	}
}

func TestSnapshotOrdersPlayersByTurnOrder(t *testing.T) {
	env := newTestEnv(t, 33, nil)
	sess, players := env.setupLobby(t, "Alice", "Bob", "Carol")
	ctx := context.Background()

	if err := env.svc.StartGame(ctx, sess.PIN, players[0].ID); err != nil {
		t.Fatalf("start game error: %v", err)
	}

	got := env.reload(t, sess.PIN)
	view, err := env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}

	if len(view.Players) != 3 {
		t.Fatalf("player views = %d, want 3", len(view.Players))
	}
	for i, idStr := range got.TurnOrder {
		if view.Players[i].ID.String() != idStr {
			t.Fatalf("player %d = %s, want turn order entry %s", i, view.Players[i].ID, idStr)
		}
	}
}

func TestSnapshotTurnDeadline(t *testing.T) {
	env := newTestEnv(t, 34, nil)
	sess, players := env.setupLobby(t, "Alice", "Bob")
	ctx := context.Background()

	view, err := env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.TurnEndsAt != nil {
		t.Fatal("turn deadline set in the lobby")
	}

	if err := env.svc.StartGame(ctx, sess.PIN, players[0].ID); err != nil {
		t.Fatalf("start game error: %v", err)
	}

	view, err = env.svc.Snapshot(ctx, sess.PIN)
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if view.TurnStartedAt == nil || view.TurnEndsAt == nil {
		t.Fatal("turn timestamps missing while playing")
	}
	want := view.TurnStartedAt.Add(time.Duration(view.Rules.TurnSeconds) * time.Second)
	if !view.TurnEndsAt.Equal(want) {
		t.Fatalf("turn ends at %v, want %v", view.TurnEndsAt, want)
	}
}
