package session

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/database"
	"github.com/music-timeline-game/pkg/models"
)

// memStore is an in-memory database.Store. Values are cloned through JSON
// on the way in and out, mirroring the serializer columns of the real
// store, so an aborted operation cannot leak mutations into storage.
type memStore struct {
	sessions    map[string]*models.Session // keyed by PIN
	players     map[uuid.UUID]*models.Player
	playerOrder map[uuid.UUID][]uuid.UUID // session id -> insertion order
	turnRecords []*models.TurnRecord
	stats       []*models.GameStats
}

func newMemStore() *memStore {
	return &memStore{
		sessions:    make(map[string]*models.Session),
		players:     make(map[uuid.UUID]*models.Player),
		playerOrder: make(map[uuid.UUID][]uuid.UUID),
	}
}

func clone[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func (m *memStore) CreateSession(sess *models.Session) error {
	stored := clone(sess)
	stored.Players = nil
	m.sessions[sess.PIN] = stored
	return nil
}

func (m *memStore) GetSessionByPIN(pin string) (*models.Session, error) {
	stored, exists := m.sessions[pin]
	if !exists {
		return nil, database.ErrNotFound
	}

	sess := clone(stored)
	for _, id := range m.playerOrder[sess.ID] {
		sess.Players = append(sess.Players, *clone(m.players[id]))
	}
	return sess, nil
}

func (m *memStore) SaveSession(sess *models.Session) error {
	stored := clone(sess)
	stored.Players = nil
	m.sessions[sess.PIN] = stored
	return nil
}

func (m *memStore) CreatePlayer(player *models.Player) error {
	m.players[player.ID] = clone(player)
	m.playerOrder[player.SessionID] = append(m.playerOrder[player.SessionID], player.ID)
	return nil
}

func (m *memStore) SavePlayer(player *models.Player) error {
	m.players[player.ID] = clone(player)
	return nil
}

func (m *memStore) GetPlayers(sessionID uuid.UUID) ([]*models.Player, error) {
	var players []*models.Player
	for _, id := range m.playerOrder[sessionID] {
		players = append(players, clone(m.players[id]))
	}
	return players, nil
}

func (m *memStore) CreateTurnRecord(record *models.TurnRecord) error {
	m.turnRecords = append(m.turnRecords, clone(record))
	return nil
}

func (m *memStore) GetTurnRecords(sessionID uuid.UUID, gameNumber int) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord
	for _, r := range m.turnRecords {
		if r.SessionID == sessionID && r.GameNumber == gameNumber {
			records = append(records, clone(r))
		}
	}
	return records, nil
}

func (m *memStore) CreateGameStats(stats *models.GameStats) error {
	m.stats = append(m.stats, clone(stats))
	return nil
}

func (m *memStore) Atomically(fn func(tx database.Store) error) error {
	return fn(m)
}

// fakePresence keeps heartbeats in a map and lets tests age players out.
type fakePresence struct {
	seen map[string]time.Time
}

func newFakePresence() *fakePresence {
	return &fakePresence{seen: make(map[string]time.Time)}
}

func (p *fakePresence) Touch(_ context.Context, playerID string) error {
	p.seen[playerID] = time.Now()
	return nil
}

func (p *fakePresence) LastSeen(_ context.Context, playerID string) (time.Time, error) {
	return p.seen[playerID], nil
}

func (p *fakePresence) disconnect(playerID uuid.UUID) {
	p.seen[playerID.String()] = time.Now().Add(-time.Minute)
}

type fakeNotifier struct {
	signals []string
}

func (n *fakeNotifier) SessionChanged(pin string) {
	n.signals = append(n.signals, pin)
}

type fakeCatalog struct {
	primary  []models.Track
	fallback []models.Track
}

func (c *fakeCatalog) PrimaryPool(_ context.Context, _ models.Rules, _ *rand.Rand) []models.Track {
	return c.primary
}

func (c *fakeCatalog) Fallback() []models.Track {
	return c.fallback
}

func makeTracks(prefix string, years ...int) []models.Track {
	tracks := make([]models.Track, len(years))
	for i, year := range years {
		id := prefix + string(rune('a'+i%26)) + "-" + uuid.NewString()[:8]
		tracks[i] = models.Track{
			ID:          id,
			Title:       "Song " + id,
			Artist:      "Artist " + id,
			Year:        year,
			PlaybackURI: "spotify:track:" + id,
		}
	}
	return tracks
}

type testEnv struct {
	svc      *Service
	store    *memStore
	presence *fakePresence
	notifier *fakeNotifier
	catalog  *fakeCatalog
}

func newTestEnv(t *testing.T, seed int64, cat *fakeCatalog) *testEnv {
	t.Helper()
	if cat == nil {
		cat = &fakeCatalog{
			primary:  makeTracks("p", 1961, 1972, 1983, 1994, 2005, 2016),
			fallback: makeTracks("f", 1955, 1966, 1977, 1988, 1999, 2010, 2021),
		}
	}

	store := newMemStore()
	presence := newFakePresence()
	notifier := &fakeNotifier{}
	rng := rand.New(rand.NewSource(seed))

	return &testEnv{
		svc:      NewService(store, presence, notifier, cat, nil, rng),
		store:    store,
		presence: presence,
		notifier: notifier,
		catalog:  cat,
	}
}

// setupLobby creates a session with a host and joins extra players, all
// connected.
func (e *testEnv) setupLobby(t *testing.T, names ...string) (*models.Session, []*models.Player) {
	t.Helper()
	ctx := context.Background()

	sess, err := e.svc.CreateSession(ctx, uuid.New(), names[0], "🎵")
	if err != nil {
		t.Fatalf("create session error: %v", err)
	}

	players := []*models.Player{&sess.Players[0]}
	for _, name := range names[1:] {
		p, err := e.svc.Join(ctx, sess.PIN, uuid.New(), name, "🎸")
		if err != nil {
			t.Fatalf("join error for %s: %v", name, err)
		}
		players = append(players, p)
	}
	return sess, players
}

func (e *testEnv) reload(t *testing.T, pin string) *models.Session {
	t.Helper()
	sess, err := e.store.GetSessionByPIN(pin)
	if err != nil {
		t.Fatalf("reload session error: %v", err)
	}
	return sess
}

// mutate lets a test adjust stored state directly to set up a scenario.
func (e *testEnv) mutate(t *testing.T, pin string, fn func(sess *models.Session)) {
	t.Helper()
	sess := e.reload(t, pin)
	fn(sess)
	if err := e.store.SaveSession(sess); err != nil {
		t.Fatalf("save session error: %v", err)
	}
	for i := range sess.Players {
		if err := e.store.SavePlayer(&sess.Players[i]); err != nil {
			t.Fatalf("save player error: %v", err)
		}
	}
}

func (e *testEnv) activePlayer(t *testing.T, pin string) *models.Player {
	t.Helper()
	sess := e.reload(t, pin)
	p := findPlayer(sess, sess.ActivePlayerID())
	if p == nil {
		t.Fatalf("no active player in session %s", pin)
	}
	return p
}

func (e *testEnv) player(t *testing.T, pin string, id uuid.UUID) *models.Player {
	t.Helper()
	p := findPlayer(e.reload(t, pin), id)
	if p == nil {
		t.Fatalf("player %s not found", id)
	}
	return p
}

func timelineOf(years ...int) []models.TimelineSong {
	timeline := make([]models.TimelineSong, len(years))
	for i, year := range years {
		timeline[i] = models.TimelineSong{
			Track: models.Track{
				ID:    uuid.NewString(),
				Title: "Placed",
				Year:  year,
			},
			AddedAt: time.Now(),
		}
	}
	return timeline
}
