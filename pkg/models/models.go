package models

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle states.
const (
	StateLobby    = "lobby"
	StatePlaying  = "playing"
	StateFinished = "finished"
)

// Steal sub-phase tags. A nil *StealPhase on the session means no steal
// phase is active.
const (
	StealPhaseDecide = "decide"
	StealPhasePlace  = "place"
)

// Track is a single song from a catalog or playlist. Immutable once drawn
// into a session.
type Track struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Year        int    `json:"year"`
	PlaybackURI string `json:"playback_uri"`
}

// TimelineSong is a track placed on a player's timeline.
type TimelineSong struct {
	Track
	AddedAt time.Time `json:"added_at"`
}

// Guess is a player's free-text guess at the mystery track. Title and
// artist are matched independently; both must match for the guess to count.
type Guess struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// StealAttempt is one stealer's claimed placement slot during the place
// phase. SubmittedAt is server-assigned at commit time and orders
// resolution.
type StealAttempt struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Index       int       `json:"index"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// StealPhase is the transient steal descriptor embedded in the session.
// Phase tags which sub-phase is active; Eligible is the set of player ids
// allowed to steal, frozen when the phase opens; Decisions maps player id
// to committed-to-steal during decide; Attempts accumulate during place.
type StealPhase struct {
	Phase          string          `json:"phase"`
	Deadline       time.Time       `json:"deadline"`
	AttemptedIndex int             `json:"attempted_index"`
	Guess          *Guess          `json:"guess,omitempty"`
	Eligible       []string        `json:"eligible"`
	Decisions      map[string]bool `json:"decisions"`
	Attempts       []StealAttempt  `json:"attempts"`
}

// Rules are the per-session configurable game rules.
type Rules struct {
	SongsToWin                int    `json:"songs_to_win"`
	TurnSeconds               int    `json:"turn_seconds"`
	StealWindowSeconds        int    `json:"steal_window_seconds"`
	MaxPlayers                int    `json:"max_players"`
	ShuffleTurnOrderEachRound bool   `json:"shuffle_turn_order_each_round"`
	CustomPlaylistID          string `json:"custom_playlist_id,omitempty"`
}

// DefaultRules returns the rule set new sessions start with.
func DefaultRules() Rules {
	return Rules{
		SongsToWin:         10,
		TurnSeconds:        90,
		StealWindowSeconds: 15,
		MaxPlayers:         8,
	}
}

type Session struct {
	ID              uuid.UUID   `json:"id" gorm:"primaryKey"`
	PIN             string      `json:"pin" gorm:"uniqueIndex;size:4"`
	State           string      `json:"state"`
	TurnOrder       []string    `json:"turn_order" gorm:"serializer:json"`
	TurnIndex       int         `json:"turn_index"`
	Round           int         `json:"round"`
	Rules           Rules       `json:"rules" gorm:"serializer:json"`
	CurrentTrack    *Track      `json:"current_track" gorm:"serializer:json"`
	TurnStartedAt   *time.Time  `json:"turn_started_at"`
	Steal           *StealPhase `json:"steal" gorm:"serializer:json"`
	UsedTrackIDs    []string    `json:"used_track_ids" gorm:"serializer:json"`
	PoolSnapshot    []Track     `json:"pool_snapshot" gorm:"serializer:json"`
	FallbackEngaged bool        `json:"fallback_engaged"`
	GamesPlayed     int         `json:"games_played"`
	Players         []Player    `json:"players" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ActivePlayerID returns the id of the player whose turn it is, or
// uuid.Nil outside of play.
func (s *Session) ActivePlayerID() uuid.UUID {
	if s.State != StatePlaying || len(s.TurnOrder) == 0 || s.TurnIndex < 0 || s.TurnIndex >= len(s.TurnOrder) {
		return uuid.Nil
	}
	id, err := uuid.Parse(s.TurnOrder[s.TurnIndex])
	if err != nil {
		return uuid.Nil
	}
	return id
}

// IsUsed reports whether a track id was already drawn in this playthrough.
func (s *Session) IsUsed(trackID string) bool {
	for _, id := range s.UsedTrackIDs {
		if id == trackID {
			return true
		}
	}
	return false
}

type Player struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey"`
	SessionID uuid.UUID      `json:"session_id" gorm:"index"`
	Name      string         `json:"name"`
	Avatar    string         `json:"avatar"`
	Tokens    int            `json:"tokens"`
	Timeline  []TimelineSong `json:"timeline" gorm:"serializer:json"`
	IsHost    bool           `json:"is_host"`
	Wins      int            `json:"wins"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StealAttemptRecord is a steal attempt verdict captured on a turn record.
type StealAttemptRecord struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Index       int       `json:"index"`
	Correct     bool      `json:"correct"`
	WonSong     bool      `json:"won_song"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TurnRecord is the immutable history row written once per resolved turn
// (or per purchased free song). Never mutated after creation.
type TurnRecord struct {
	ID               uuid.UUID            `json:"id" gorm:"primaryKey"`
	SessionID        uuid.UUID            `json:"session_id" gorm:"index"`
	GameNumber       int                  `json:"game_number"`
	Round            int                  `json:"round"`
	PlayerID         uuid.UUID            `json:"player_id"`
	Track            Track                `json:"track" gorm:"serializer:json"`
	AttemptedIndex   int                  `json:"attempted_index"`
	PlacementCorrect bool                 `json:"placement_correct"`
	Guess            *Guess               `json:"guess,omitempty" gorm:"serializer:json"`
	GuessCorrect     bool                 `json:"guess_correct"`
	Purchased        bool                 `json:"purchased"`
	RecipientID      *uuid.UUID           `json:"recipient_id,omitempty"`
	StealAttempts    []StealAttemptRecord `json:"steal_attempts" gorm:"serializer:json"`
	CreatedAt        time.Time            `json:"created_at"`
}

// GameStats is the end-of-game aggregate row, one per finished playthrough.
type GameStats struct {
	ID                uuid.UUID `json:"id" gorm:"primaryKey"`
	SessionID         uuid.UUID `json:"session_id" gorm:"index"`
	GameNumber        int       `json:"game_number"`
	WinnerID          uuid.UUID `json:"winner_id"`
	WinnerName        string    `json:"winner_name"`
	Rounds            int       `json:"rounds"`
	PlayerCount       int       `json:"player_count"`
	EndedByExhaustion bool      `json:"ended_by_exhaustion"`
	CreatedAt         time.Time `json:"created_at"`
}
