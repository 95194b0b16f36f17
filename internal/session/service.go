package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/database"
	"github.com/music-timeline-game/pkg/models"
)

const (
	startingTokens = 2
	skipSongCost   = 1
	stealCost      = 1
	freeSongCost   = 3
	guessReward    = 1

	// The place window is fixed, independent of the configurable decide
	// window.
	placeWindow = 20 * time.Second

	// A player counts as connected when their last heartbeat is this
	// recent.
	connectedWithin = 5 * time.Second

	pinLength = 4
	// Ambiguous characters (O/0, I/1/L) are excluded so PINs survive
	// being read out loud.
	pinAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// Catalog supplies song pools. Implemented by internal/catalog.
type Catalog interface {
	PrimaryPool(ctx context.Context, rules models.Rules, rng *rand.Rand) []models.Track
	Fallback() []models.Track
}

// YearLookup resolves a better release year for a track id. ok=false
// means no better value is known; the catalog year stands.
type YearLookup interface {
	ReleaseYear(ctx context.Context, trackID string) (year int, ok bool)
}

// Presence tracks player heartbeats. Connectivity is always derived from
// LastSeen at read time, never stored.
type Presence interface {
	Touch(ctx context.Context, playerID string) error
	LastSeen(ctx context.Context, playerID string) (time.Time, error)
}

// Notifier receives a signal after every committed state mutation.
type Notifier interface {
	SessionChanged(pin string)
}

// Service is the server-authoritative game engine. All mutations on one
// session are serialized through a per-PIN lock and committed through a
// single storage transaction: validate first, commit once, never roll
// back a partial write.
type Service struct {
	store    database.Store
	presence Presence
	notifier Notifier
	catalog  Catalog
	years    YearLookup

	rngMu sync.Mutex
	rng   *rand.Rand

	lockMu sync.Mutex
	locks  map[string]*pinLock
}

// pinLock serializes mutations on one session. holders counts lockers
// and waiters; the map entry is dropped once it reaches zero, so the
// lock map tracks only sessions with in-flight operations.
type pinLock struct {
	mu      sync.Mutex
	holders int
}

func NewService(store database.Store, presence Presence, notifier Notifier, catalog Catalog, years YearLookup, rng *rand.Rand) *Service {
	return &Service{
		store:    store,
		presence: presence,
		notifier: notifier,
		catalog:  catalog,
		years:    years,
		rng:      rng,
		locks:    make(map[string]*pinLock),
	}
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}

func (s *Service) acquirePIN(pin string) *pinLock {
	s.lockMu.Lock()
	lock, exists := s.locks[pin]
	if !exists {
		lock = &pinLock{}
		s.locks[pin] = lock
	}
	lock.holders++
	s.lockMu.Unlock()

	lock.mu.Lock()
	return lock
}

func (s *Service) releasePIN(pin string, lock *pinLock) {
	lock.mu.Unlock()

	s.lockMu.Lock()
	lock.holders--
	if lock.holders == 0 {
		delete(s.locks, pin)
	}
	s.lockMu.Unlock()
}

// withSession runs a mutating operation against one session: per-PIN
// lock, load, validate-and-mutate via fn, commit, then notify
// subscribers. fn returning an error aborts with nothing written.
func (s *Service) withSession(pin string, fn func(tx database.Store, sess *models.Session) error) error {
	lock := s.acquirePIN(pin)
	defer s.releasePIN(pin, lock)

	err := s.store.Atomically(func(tx database.Store) error {
		sess, err := s.getSession(tx, pin)
		if err != nil {
			return err
		}
		return fn(tx, sess)
	})
	if err != nil {
		return err
	}

	s.notifier.SessionChanged(pin)
	return nil
}

func (s *Service) getSession(store database.Store, pin string) (*models.Session, error) {
	sess, err := store.GetSessionByPIN(pin)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", pin, ErrNotFound)
		}
		return nil, err
	}
	return sess, nil
}

func findPlayer(sess *models.Session, id uuid.UUID) *models.Player {
	for i := range sess.Players {
		if sess.Players[i].ID == id {
			return &sess.Players[i]
		}
	}
	return nil
}

func (s *Service) isConnected(ctx context.Context, playerID uuid.UUID) bool {
	lastSeen, err := s.presence.LastSeen(ctx, playerID.String())
	if err != nil {
		return false
	}
	return time.Since(lastSeen) < connectedWithin
}

// Exists reports whether a session with the given PIN exists. Used by the
// subscription endpoint before upgrading the connection.
func (s *Service) Exists(pin string) bool {
	_, err := s.getSession(s.store, pin)
	return err == nil
}

// CreateSession creates a new session in the lobby state with the caller
// as host and first player.
func (s *Service) CreateSession(ctx context.Context, hostID uuid.UUID, hostName, avatar string) (*models.Session, error) {
	var sess *models.Session

	err := s.store.Atomically(func(tx database.Store) error {
		pin, err := s.generatePIN(tx)
		if err != nil {
			return err
		}

		now := time.Now()
		sess = &models.Session{
			ID:        uuid.New(),
			PIN:       pin,
			State:     models.StateLobby,
			Rules:     models.DefaultRules(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateSession(sess); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		host := models.Player{
			ID:        hostID,
			SessionID: sess.ID,
			Name:      hostName,
			Avatar:    avatar,
			Tokens:    startingTokens,
			IsHost:    true,
			CreatedAt: now,
		}
		if err := tx.CreatePlayer(&host); err != nil {
			return fmt.Errorf("failed to create host player: %w", err)
		}

		sess.Players = []models.Player{host}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.presence.Touch(ctx, hostID.String()); err != nil {
		return nil, fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return sess, nil
}

func (s *Service) generatePIN(tx database.Store) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		pin := make([]byte, pinLength)
		for i := range pin {
			pin[i] = pinAlphabet[s.intn(len(pinAlphabet))]
		}

		_, err := tx.GetSessionByPIN(string(pin))
		if errors.Is(err, database.ErrNotFound) {
			return string(pin), nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("failed to generate a unique PIN")
}

// UpdateRules replaces the session rules. Host only, lobby only.
func (s *Service) UpdateRules(ctx context.Context, pin string, actorID uuid.UUID, rules models.Rules) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		actor := findPlayer(sess, actorID)
		if actor == nil {
			return fmt.Errorf("player: %w", ErrNotFound)
		}
		if !actor.IsHost {
			return fmt.Errorf("only the host may change rules: %w", ErrForbidden)
		}
		if sess.State != models.StateLobby {
			return fmt.Errorf("rules are fixed once the game starts: %w", ErrBadState)
		}
		if rules.SongsToWin < 1 || rules.MaxPlayers < 1 || rules.StealWindowSeconds < 1 || rules.TurnSeconds < 1 {
			return fmt.Errorf("invalid rules: %w", ErrBadState)
		}

		sess.Rules = rules
		return tx.SaveSession(sess)
	})
}

// Join adds a player to a session, or reconnects a disconnected player
// with the same name. The returned player id is authoritative: a
// reconnecting caller adopts the existing player identity.
func (s *Service) Join(ctx context.Context, pin string, userID uuid.UUID, name, avatar string) (*models.Player, error) {
	var joined *models.Player

	err := s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State == models.StatePlaying {
			return fmt.Errorf("game already in progress: %w", ErrBadState)
		}

		for i := range sess.Players {
			if sess.Players[i].Name != name {
				continue
			}
			if s.isConnected(ctx, sess.Players[i].ID) {
				return fmt.Errorf("name %q already in use: %w", name, ErrConflict)
			}
			// Reconnect: same name, currently disconnected.
			joined = &sess.Players[i]
			if avatar != "" && joined.Avatar != avatar {
				joined.Avatar = avatar
				return tx.SavePlayer(joined)
			}
			return nil
		}

		if len(sess.Players) >= sess.Rules.MaxPlayers {
			return fmt.Errorf("session is full: %w", ErrBadState)
		}

		player := models.Player{
			ID:        userID,
			SessionID: sess.ID,
			Name:      name,
			Avatar:    avatar,
			Tokens:    startingTokens,
			CreatedAt: time.Now(),
		}
		if err := tx.CreatePlayer(&player); err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}
		joined = &player
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.presence.Touch(ctx, joined.ID.String()); err != nil {
		return nil, fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return joined, nil
}

// Heartbeat refreshes a player's last-seen timestamp. Not a state
// mutation; subscribers are not signalled.
func (s *Service) Heartbeat(ctx context.Context, pin string, playerID uuid.UUID) error {
	sess, err := s.getSession(s.store, pin)
	if err != nil {
		return err
	}
	if findPlayer(sess, playerID) == nil {
		return fmt.Errorf("player: %w", ErrNotFound)
	}
	return s.presence.Touch(ctx, playerID.String())
}

// StartGame moves the session from lobby to playing: shuffles the turn
// order of connected players, deals one starting song to each from a
// single shuffled pool sequence, and draws the first mystery song from
// the same sequence so nothing is handed out twice.
func (s *Service) StartGame(ctx context.Context, pin string, actorID uuid.UUID) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		actor := findPlayer(sess, actorID)
		if actor == nil {
			return fmt.Errorf("player: %w", ErrNotFound)
		}
		if !actor.IsHost {
			return fmt.Errorf("only the host may start the game: %w", ErrForbidden)
		}
		if sess.State != models.StateLobby {
			return fmt.Errorf("game can only start from the lobby: %w", ErrBadState)
		}

		var connected []*models.Player
		for i := range sess.Players {
			if s.isConnected(ctx, sess.Players[i].ID) {
				connected = append(connected, &sess.Players[i])
			}
		}
		if len(connected) == 0 {
			return fmt.Errorf("no connected players: %w", ErrBadState)
		}

		s.rngMu.Lock()
		pool := s.catalog.PrimaryPool(ctx, sess.Rules, s.rng)
		s.rngMu.Unlock()

		snapshot := make([]models.Track, len(pool))
		copy(snapshot, pool)
		s.shuffle(len(snapshot), func(i, j int) {
			snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
		})
		sess.PoolSnapshot = snapshot
		sess.UsedTrackIDs = nil
		sess.FallbackEngaged = false

		order := make([]string, len(connected))
		for i, p := range connected {
			order[i] = p.ID.String()
		}
		s.shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		now := time.Now()
		next := 0
		for _, p := range connected {
			p.Tokens = startingTokens
			p.Timeline = nil

			var starter models.Track
			if next < len(snapshot) {
				starter = snapshot[next]
				sess.UsedTrackIDs = append(sess.UsedTrackIDs, starter.ID)
				next++
			} else {
				drawn, err := s.drawTrack(ctx, sess)
				if err != nil {
					return fmt.Errorf("pool too small to deal starting songs: %w", ErrBadState)
				}
				starter = drawn
			}
			if year, ok := s.lookupYear(ctx, starter.ID); ok {
				starter.Year = year
			}

			p.Timeline = []models.TimelineSong{{Track: starter, AddedAt: now}}
			if err := tx.SavePlayer(p); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
		}

		var mystery models.Track
		if next < len(snapshot) {
			mystery = snapshot[next]
			sess.UsedTrackIDs = append(sess.UsedTrackIDs, mystery.ID)
			if year, ok := s.lookupYear(ctx, mystery.ID); ok {
				mystery.Year = year
			}
		} else {
			drawn, err := s.drawTrack(ctx, sess)
			if err != nil {
				return fmt.Errorf("pool too small to draw a mystery song: %w", ErrBadState)
			}
			mystery = drawn
		}

		sess.State = models.StatePlaying
		sess.TurnOrder = order
		sess.TurnIndex = 0
		sess.Round = 1
		sess.CurrentTrack = &mystery
		sess.TurnStartedAt = &now
		sess.Steal = nil
		return tx.SaveSession(sess)
	})
}

// ConfirmTurn records the active player's placement attempt and opens the
// steal decide window. Correctness is deliberately not evaluated here:
// stealing has to stay meaningful even when the active player is about to
// be right. Steal eligibility is frozen at this moment: the non-active
// players currently connected.
func (s *Service) ConfirmTurn(ctx context.Context, pin string, actorID uuid.UUID, index int, guess *models.Guess) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State != models.StatePlaying {
			return fmt.Errorf("game is not running: %w", ErrBadState)
		}
		if sess.Steal != nil {
			return fmt.Errorf("a steal phase is already active: %w", ErrBadState)
		}
		if sess.ActivePlayerID() != actorID {
			return fmt.Errorf("not your turn: %w", ErrForbidden)
		}

		active := findPlayer(sess, actorID)
		if index < 0 || index > len(active.Timeline) {
			return fmt.Errorf("placement index out of range: %w", ErrBadState)
		}

		var eligible []string
		for i := range sess.Players {
			p := &sess.Players[i]
			if p.ID == actorID || !s.isConnected(ctx, p.ID) {
				continue
			}
			eligible = append(eligible, p.ID.String())
		}

		sess.Steal = &models.StealPhase{
			Phase:          models.StealPhaseDecide,
			Deadline:       time.Now().Add(time.Duration(sess.Rules.StealWindowSeconds) * time.Second),
			AttemptedIndex: index,
			Guess:          guess,
			Eligible:       eligible,
			Decisions:      make(map[string]bool),
		}
		return tx.SaveSession(sess)
	})
}

// DecideSteal records one eligible player's decide-phase choice.
// Committing to steal costs one token immediately; the fee is not
// refunded no matter how resolution goes. When every eligible player has
// decided the phase advances on its own. Eligibility was frozen at
// confirm time, so a decider who has since disconnected is still heard
// and a player who was away at confirm never becomes one.
func (s *Service) DecideSteal(ctx context.Context, pin string, actorID uuid.UUID, steal bool) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State != models.StatePlaying || sess.Steal == nil || sess.Steal.Phase != models.StealPhaseDecide {
			return fmt.Errorf("no decide phase active: %w", ErrBadState)
		}
		if sess.ActivePlayerID() == actorID {
			return fmt.Errorf("the active player cannot steal: %w", ErrBadState)
		}

		actor := findPlayer(sess, actorID)
		if actor == nil {
			return fmt.Errorf("player: %w", ErrNotFound)
		}
		if !stealEligible(sess.Steal, actorID) {
			return fmt.Errorf("not eligible to steal this turn: %w", ErrForbidden)
		}
		if _, decided := sess.Steal.Decisions[actorID.String()]; decided {
			return fmt.Errorf("already decided this phase: %w", ErrConflict)
		}

		if steal {
			if actor.Tokens < stealCost {
				return fmt.Errorf("a steal costs %d token: %w", stealCost, ErrInsufficientTokens)
			}
			actor.Tokens -= stealCost
			if err := tx.SavePlayer(actor); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
		}
		sess.Steal.Decisions[actorID.String()] = steal

		if allEligibleDecided(sess.Steal) {
			return s.openPlaceOrResolve(ctx, tx, sess)
		}
		return tx.SaveSession(sess)
	})
}

// allEligibleDecided reports whether every player in the frozen eligible
// set has recorded a decision.
func allEligibleDecided(steal *models.StealPhase) bool {
	for _, id := range steal.Eligible {
		if _, decided := steal.Decisions[id]; !decided {
			return false
		}
	}
	return true
}

func stealEligible(steal *models.StealPhase, playerID uuid.UUID) bool {
	id := playerID.String()
	for _, eligible := range steal.Eligible {
		if eligible == id {
			return true
		}
	}
	return false
}

func stealerCount(steal *models.StealPhase) int {
	n := 0
	for _, committed := range steal.Decisions {
		if committed {
			n++
		}
	}
	return n
}

// openPlaceOrResolve ends the decide phase: with at least one committed
// stealer the place window opens, otherwise there is nothing to place and
// the turn resolves immediately.
func (s *Service) openPlaceOrResolve(ctx context.Context, tx database.Store, sess *models.Session) error {
	if stealerCount(sess.Steal) == 0 {
		return s.resolve(ctx, tx, sess)
	}

	sess.Steal.Phase = models.StealPhasePlace
	sess.Steal.Deadline = time.Now().Add(placeWindow)
	return tx.SaveSession(sess)
}

// TransitionToPlacePhase is the client-driven decide-deadline transition.
// Deadlines are advisory data; the server trusts whichever client calls
// first after its countdown ends.
func (s *Service) TransitionToPlacePhase(ctx context.Context, pin string) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State != models.StatePlaying || sess.Steal == nil || sess.Steal.Phase != models.StealPhaseDecide {
			return fmt.Errorf("no decide phase active: %w", ErrBadState)
		}
		return s.openPlaceOrResolve(ctx, tx, sess)
	})
}

// SubmitSteal claims one placement slot for a stealer. First submission
// wins a slot; later claims on the same index are conflicts, not silent
// no-ops. A player who skipped (or missed) the decide phase may still
// submit by paying the steal fee now.
func (s *Service) SubmitSteal(ctx context.Context, pin string, actorID uuid.UUID, index int) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State != models.StatePlaying || sess.Steal == nil || sess.Steal.Phase != models.StealPhasePlace {
			return fmt.Errorf("no place phase active: %w", ErrBadState)
		}
		if sess.ActivePlayerID() == actorID {
			return fmt.Errorf("the active player cannot steal: %w", ErrBadState)
		}

		actor := findPlayer(sess, actorID)
		if actor == nil {
			return fmt.Errorf("player: %w", ErrNotFound)
		}

		for _, attempt := range sess.Steal.Attempts {
			if attempt.PlayerID == actorID {
				return fmt.Errorf("already submitted a steal: %w", ErrConflict)
			}
			if attempt.Index == index {
				return fmt.Errorf("position already taken: %w", ErrConflict)
			}
		}
		if index < 0 || index > len(actor.Timeline) {
			return fmt.Errorf("placement index out of range: %w", ErrBadState)
		}

		if !sess.Steal.Decisions[actorID.String()] {
			if !stealEligible(sess.Steal, actorID) {
				return fmt.Errorf("not eligible to steal this turn: %w", ErrForbidden)
			}
			// Late decider: pays the fee at submission time.
			if actor.Tokens < stealCost {
				return fmt.Errorf("a steal costs %d token: %w", stealCost, ErrInsufficientTokens)
			}
			actor.Tokens -= stealCost
			if err := tx.SavePlayer(actor); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
			if sess.Steal.Decisions == nil {
				sess.Steal.Decisions = make(map[string]bool)
			}
			sess.Steal.Decisions[actorID.String()] = true
		}

		sess.Steal.Attempts = append(sess.Steal.Attempts, models.StealAttempt{
			PlayerID:    actorID,
			Index:       index,
			SubmittedAt: time.Now(),
		})
		return tx.SaveSession(sess)
	})
}

// ResolveStealPhase is the client-driven deadline transition out of a
// steal phase. Called during decide with committed stealers it opens the
// place window instead of resolving, so stealers are never denied their
// placement.
func (s *Service) ResolveStealPhase(ctx context.Context, pin string) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		if sess.State != models.StatePlaying || sess.Steal == nil {
			return fmt.Errorf("no steal phase active: %w", ErrBadState)
		}
		if sess.Steal.Phase == models.StealPhaseDecide {
			return s.openPlaceOrResolve(ctx, tx, sess)
		}
		return s.resolve(ctx, tx, sess)
	})
}

// resolve closes out the turn: judges the active player's placement
// against their own timeline, scores the guess, evaluates steal attempts
// in submission order against each stealer's own timeline, writes the
// immutable history record, and either finishes the game or advances the
// turn.
func (s *Service) resolve(ctx context.Context, tx database.Store, sess *models.Session) error {
	steal := sess.Steal
	activeID := sess.ActivePlayerID()
	active := findPlayer(sess, activeID)
	if active == nil || sess.CurrentTrack == nil {
		return fmt.Errorf("session has no active turn: %w", ErrBadState)
	}
	track := *sess.CurrentTrack
	now := time.Now()

	placementCorrect := IsPlacementCorrect(active.Timeline, track.Year, steal.AttemptedIndex)

	guessCorrect := false
	if steal.Guess != nil {
		guessCorrect = GuessMatches(steal.Guess.Title, track.Title) &&
			GuessMatches(steal.Guess.Artist, track.Artist)
		if guessCorrect {
			// The guess bonus is independent of placement correctness.
			active.Tokens += guessReward
		}
	}

	attempts := make([]models.StealAttempt, len(steal.Attempts))
	copy(attempts, steal.Attempts)
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].SubmittedAt.Before(attempts[j].SubmittedAt)
	})

	var recipient *models.Player
	attemptRecords := make([]models.StealAttemptRecord, 0, len(attempts))
	if placementCorrect {
		recipient = active
		// Steal attempts lost their bet; they are recorded but never
		// evaluated.
		for _, attempt := range attempts {
			attemptRecords = append(attemptRecords, models.StealAttemptRecord{
				PlayerID:    attempt.PlayerID,
				Index:       attempt.Index,
				SubmittedAt: attempt.SubmittedAt,
			})
		}
	} else {
		for _, attempt := range attempts {
			stealer := findPlayer(sess, attempt.PlayerID)
			correct := stealer != nil && IsPlacementCorrect(stealer.Timeline, track.Year, attempt.Index)
			won := correct && recipient == nil
			if won {
				recipient = stealer
			}
			attemptRecords = append(attemptRecords, models.StealAttemptRecord{
				PlayerID:    attempt.PlayerID,
				Index:       attempt.Index,
				Correct:     correct,
				WonSong:     won,
				SubmittedAt: attempt.SubmittedAt,
			})
		}
	}

	record := models.TurnRecord{
		ID:               uuid.New(),
		SessionID:        sess.ID,
		GameNumber:       sess.GamesPlayed + 1,
		Round:            sess.Round,
		PlayerID:         activeID,
		Track:            track,
		AttemptedIndex:   steal.AttemptedIndex,
		PlacementCorrect: placementCorrect,
		Guess:            steal.Guess,
		GuessCorrect:     guessCorrect,
		StealAttempts:    attemptRecords,
		CreatedAt:        now,
	}
	if recipient != nil {
		id := recipient.ID
		record.RecipientID = &id
	}
	if err := tx.CreateTurnRecord(&record); err != nil {
		return fmt.Errorf("failed to write turn record: %w", err)
	}

	if recipient != nil {
		recipient.Timeline = insertSong(recipient.Timeline, models.TimelineSong{Track: track, AddedAt: now})
	}
	if err := tx.SavePlayer(active); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	if recipient != nil && recipient != active {
		if err := tx.SavePlayer(recipient); err != nil {
			return fmt.Errorf("failed to save player: %w", err)
		}
	}

	if recipient != nil && len(recipient.Timeline) >= sess.Rules.SongsToWin {
		return s.finishGame(tx, sess, recipient, false)
	}

	return s.advanceTurn(ctx, tx, sess)
}

// advanceTurn moves to the next player, handles round wrap, draws the
// next mystery song, and resets the steal descriptor. Pool exhaustion
// here ends the game crediting the longest timeline.
func (s *Service) advanceTurn(ctx context.Context, tx database.Store, sess *models.Session) error {
	sess.TurnIndex = (sess.TurnIndex + 1) % len(sess.TurnOrder)
	if sess.TurnIndex == 0 {
		sess.Round++
		if sess.Rules.ShuffleTurnOrderEachRound {
			s.shuffle(len(sess.TurnOrder), func(i, j int) {
				sess.TurnOrder[i], sess.TurnOrder[j] = sess.TurnOrder[j], sess.TurnOrder[i]
			})
		}
	}

	sess.Steal = nil

	next, err := s.drawTrack(ctx, sess)
	if errors.Is(err, errPoolExhausted) {
		return s.finishGame(tx, sess, s.standingsWinner(sess), true)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	sess.CurrentTrack = &next
	sess.TurnStartedAt = &now
	return tx.SaveSession(sess)
}

// standingsWinner picks the player with the longest timeline, ties broken
// in favor of the first such player in turn-order iteration.
func (s *Service) standingsWinner(sess *models.Session) *models.Player {
	var winner *models.Player
	for _, idStr := range sess.TurnOrder {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		p := findPlayer(sess, id)
		if p == nil {
			continue
		}
		if winner == nil || len(p.Timeline) > len(winner.Timeline) {
			winner = p
		}
	}
	return winner
}

func (s *Service) finishGame(tx database.Store, sess *models.Session, winner *models.Player, exhausted bool) error {
	sess.State = models.StateFinished
	sess.Steal = nil
	sess.GamesPlayed++

	stats := models.GameStats{
		ID:                uuid.New(),
		SessionID:         sess.ID,
		GameNumber:        sess.GamesPlayed,
		Rounds:            sess.Round,
		PlayerCount:       len(sess.TurnOrder),
		EndedByExhaustion: exhausted,
		CreatedAt:         time.Now(),
	}
	if winner != nil {
		winner.Wins++
		stats.WinnerID = winner.ID
		stats.WinnerName = winner.Name
		if err := tx.SavePlayer(winner); err != nil {
			return fmt.Errorf("failed to save winner: %w", err)
		}
	}

	if err := tx.CreateGameStats(&stats); err != nil {
		return fmt.Errorf("failed to write game stats: %w", err)
	}
	return tx.SaveSession(sess)
}

// SkipSong lets the active player pay one token to throw away the current
// mystery song. No history is written; the turn continues with a fresh
// draw.
func (s *Service) SkipSong(ctx context.Context, pin string, actorID uuid.UUID) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		active, err := s.requireActiveOutsideSteal(sess, actorID)
		if err != nil {
			return err
		}
		if active.Tokens < skipSongCost {
			return fmt.Errorf("skipping costs %d token: %w", skipSongCost, ErrInsufficientTokens)
		}

		next, err := s.drawTrack(ctx, sess)
		if errors.Is(err, errPoolExhausted) {
			return s.finishGame(tx, sess, s.standingsWinner(sess), true)
		}
		if err != nil {
			return err
		}

		active.Tokens -= skipSongCost
		if err := tx.SavePlayer(active); err != nil {
			return fmt.Errorf("failed to save player: %w", err)
		}

		now := time.Now()
		sess.CurrentTrack = &next
		sess.TurnStartedAt = &now
		return tx.SaveSession(sess)
	})
}

// GetFreeSong lets the active player pay three tokens for a song straight
// onto their timeline, no placement or guess involved. The win condition
// is checked immediately.
func (s *Service) GetFreeSong(ctx context.Context, pin string, actorID uuid.UUID) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		active, err := s.requireActiveOutsideSteal(sess, actorID)
		if err != nil {
			return err
		}
		if active.Tokens < freeSongCost {
			return fmt.Errorf("a free song costs %d tokens: %w", freeSongCost, ErrInsufficientTokens)
		}

		track, err := s.drawTrack(ctx, sess)
		if errors.Is(err, errPoolExhausted) {
			return s.finishGame(tx, sess, s.standingsWinner(sess), true)
		}
		if err != nil {
			return err
		}

		now := time.Now()
		active.Tokens -= freeSongCost
		active.Timeline = insertSong(active.Timeline, models.TimelineSong{Track: track, AddedAt: now})
		if err := tx.SavePlayer(active); err != nil {
			return fmt.Errorf("failed to save player: %w", err)
		}

		id := active.ID
		record := models.TurnRecord{
			ID:               uuid.New(),
			SessionID:        sess.ID,
			GameNumber:       sess.GamesPlayed + 1,
			Round:            sess.Round,
			PlayerID:         active.ID,
			Track:            track,
			AttemptedIndex:   -1,
			PlacementCorrect: true,
			Purchased:        true,
			RecipientID:      &id,
			CreatedAt:        now,
		}
		if err := tx.CreateTurnRecord(&record); err != nil {
			return fmt.Errorf("failed to write turn record: %w", err)
		}

		if len(active.Timeline) >= sess.Rules.SongsToWin {
			return s.finishGame(tx, sess, active, false)
		}
		return tx.SaveSession(sess)
	})
}

func (s *Service) requireActiveOutsideSteal(sess *models.Session, actorID uuid.UUID) (*models.Player, error) {
	if sess.State != models.StatePlaying {
		return nil, fmt.Errorf("game is not running: %w", ErrBadState)
	}
	if sess.Steal != nil {
		return nil, fmt.Errorf("not allowed during a steal phase: %w", ErrBadState)
	}
	if sess.ActivePlayerID() != actorID {
		return nil, fmt.Errorf("not your turn: %w", ErrForbidden)
	}
	return findPlayer(sess, actorID), nil
}

// StartRematch resets a finished session back to the lobby on the same
// PIN. Players and cumulative win counters survive; timelines, tokens and
// pool state do not.
func (s *Service) StartRematch(ctx context.Context, pin string, actorID uuid.UUID) error {
	return s.withSession(pin, func(tx database.Store, sess *models.Session) error {
		actor := findPlayer(sess, actorID)
		if actor == nil {
			return fmt.Errorf("player: %w", ErrNotFound)
		}
		if !actor.IsHost {
			return fmt.Errorf("only the host may start a rematch: %w", ErrForbidden)
		}
		if sess.State != models.StateFinished {
			return fmt.Errorf("rematch requires a finished game: %w", ErrBadState)
		}

		for i := range sess.Players {
			p := &sess.Players[i]
			p.Timeline = nil
			p.Tokens = startingTokens
			if err := tx.SavePlayer(p); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
		}

		sess.State = models.StateLobby
		sess.TurnOrder = nil
		sess.TurnIndex = 0
		sess.Round = 0
		sess.CurrentTrack = nil
		sess.TurnStartedAt = nil
		sess.Steal = nil
		sess.UsedTrackIDs = nil
		sess.PoolSnapshot = nil
		sess.FallbackEngaged = false
		return tx.SaveSession(sess)
	})
}

// Snapshot returns the externally visible view of the session.
func (s *Service) Snapshot(ctx context.Context, pin string) (*SessionView, error) {
	sess, err := s.getSession(s.store, pin)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, sess), nil
}

// History returns the turn records of the current (or most recently
// finished) playthrough.
func (s *Service) History(ctx context.Context, pin string) ([]*models.TurnRecord, error) {
	sess, err := s.getSession(s.store, pin)
	if err != nil {
		return nil, err
	}

	gameNumber := sess.GamesPlayed
	if sess.State == models.StatePlaying {
		gameNumber = sess.GamesPlayed + 1
	}
	return s.store.GetTurnRecords(sess.ID, gameNumber)
}
