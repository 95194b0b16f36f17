package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/models"
)

// TrackView is a track as clients may see it. While the game is running
// the current mystery track exposes only its id and playback reference,
// so no device can reveal the answer before placement.
type TrackView struct {
	ID          string `json:"id"`
	PlaybackURI string `json:"playback_uri"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Year        int    `json:"year,omitempty"`
}

type PlayerView struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Avatar    string                `json:"avatar"`
	Tokens    int                   `json:"tokens"`
	Timeline  []models.TimelineSong `json:"timeline"`
	IsHost    bool                  `json:"is_host"`
	Connected bool                  `json:"connected"`
	Wins      int                   `json:"wins"`
}

type StealView struct {
	Phase          string             `json:"phase"`
	Deadline       time.Time          `json:"deadline"`
	AttemptedIndex int                `json:"attempted_index"`
	Eligible       []string           `json:"eligible"`
	Decisions      map[string]bool    `json:"decisions"`
	Attempts       []StealAttemptView `json:"attempts"`
}

type StealAttemptView struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Index       int       `json:"index"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SessionView is the full projected session state. IsStealPhase and
// StealPhaseEndsAt are the merged legacy view for clients that don't
// distinguish the decide and place sub-phases.
type SessionView struct {
	PIN              string       `json:"pin"`
	State            string       `json:"state"`
	Round            int          `json:"round"`
	TurnOrder        []string     `json:"turn_order"`
	TurnIndex        int          `json:"turn_index"`
	ActivePlayerID   *uuid.UUID   `json:"active_player_id,omitempty"`
	Rules            models.Rules `json:"rules"`
	CurrentTrack     *TrackView   `json:"current_track,omitempty"`
	TurnStartedAt    *time.Time   `json:"turn_started_at,omitempty"`
	TurnEndsAt       *time.Time   `json:"turn_ends_at,omitempty"`
	Steal            *StealView   `json:"steal,omitempty"`
	IsStealPhase     bool         `json:"is_steal_phase"`
	StealPhaseEndsAt *time.Time   `json:"steal_phase_ends_at,omitempty"`
	GamesPlayed      int          `json:"games_played"`
	FallbackEngaged  bool         `json:"fallback_engaged"`
	Players          []PlayerView `json:"players"`
}

// project assembles the externally visible view. Connectivity is computed
// here from heartbeat recency, never read from storage.
func (s *Service) project(ctx context.Context, sess *models.Session) *SessionView {
	view := &SessionView{
		PIN:             sess.PIN,
		State:           sess.State,
		Round:           sess.Round,
		TurnOrder:       sess.TurnOrder,
		TurnIndex:       sess.TurnIndex,
		Rules:           sess.Rules,
		TurnStartedAt:   sess.TurnStartedAt,
		GamesPlayed:     sess.GamesPlayed,
		FallbackEngaged: sess.FallbackEngaged,
	}

	if id := sess.ActivePlayerID(); id != uuid.Nil {
		view.ActivePlayerID = &id
	}
	if sess.TurnStartedAt != nil && sess.State == models.StatePlaying {
		ends := sess.TurnStartedAt.Add(time.Duration(sess.Rules.TurnSeconds) * time.Second)
		view.TurnEndsAt = &ends
	}

	if sess.CurrentTrack != nil {
		track := &TrackView{
			ID:          sess.CurrentTrack.ID,
			PlaybackURI: sess.CurrentTrack.PlaybackURI,
		}
		if sess.State != models.StatePlaying {
			track.Title = sess.CurrentTrack.Title
			track.Artist = sess.CurrentTrack.Artist
			track.Year = sess.CurrentTrack.Year
		}
		view.CurrentTrack = track
	}

	if sess.Steal != nil {
		steal := &StealView{
			Phase:          sess.Steal.Phase,
			Deadline:       sess.Steal.Deadline,
			AttemptedIndex: sess.Steal.AttemptedIndex,
			Eligible:       sess.Steal.Eligible,
			Decisions:      sess.Steal.Decisions,
			Attempts:       make([]StealAttemptView, 0, len(sess.Steal.Attempts)),
		}
		for _, attempt := range sess.Steal.Attempts {
			steal.Attempts = append(steal.Attempts, StealAttemptView{
				PlayerID:    attempt.PlayerID,
				Index:       attempt.Index,
				SubmittedAt: attempt.SubmittedAt,
			})
		}
		view.Steal = steal
		view.IsStealPhase = true
		deadline := sess.Steal.Deadline
		view.StealPhaseEndsAt = &deadline
	}

	view.Players = s.projectPlayers(ctx, sess)
	return view
}

// projectPlayers orders players by turn order during play, otherwise by
// insertion order.
func (s *Service) projectPlayers(ctx context.Context, sess *models.Session) []PlayerView {
	views := make([]PlayerView, 0, len(sess.Players))
	seen := make(map[uuid.UUID]bool)

	appendPlayer := func(p *models.Player) {
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		views = append(views, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			Tokens:    p.Tokens,
			Timeline:  p.Timeline,
			IsHost:    p.IsHost,
			Connected: s.isConnected(ctx, p.ID),
			Wins:      p.Wins,
		})
	}

	if sess.State == models.StatePlaying {
		for _, idStr := range sess.TurnOrder {
			id, err := uuid.Parse(idStr)
			if err != nil {
				continue
			}
			if p := findPlayer(sess, id); p != nil {
				appendPlayer(p)
			}
		}
	}
	for i := range sess.Players {
		appendPlayer(&sess.Players[i])
	}

	return views
}
