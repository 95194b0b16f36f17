package database

import (
	"errors"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/models"
)

// ErrNotFound is returned by lookups for records that do not exist,
// regardless of the backing store.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface the session engine runs against.
// *MySQLDB implements it; tests substitute an in-memory fake.
type Store interface {
	CreateSession(session *models.Session) error
	GetSessionByPIN(pin string) (*models.Session, error)
	SaveSession(session *models.Session) error

	CreatePlayer(player *models.Player) error
	SavePlayer(player *models.Player) error
	GetPlayers(sessionID uuid.UUID) ([]*models.Player, error)

	CreateTurnRecord(record *models.TurnRecord) error
	GetTurnRecords(sessionID uuid.UUID, gameNumber int) ([]*models.TurnRecord, error)
	CreateGameStats(stats *models.GameStats) error

	// Atomically runs fn inside one storage transaction. Every
	// validate-then-commit state machine transition goes through it so a
	// rejected action never leaves a partial write behind.
	Atomically(fn func(tx Store) error) error
}

var _ Store = (*MySQLDB)(nil)
