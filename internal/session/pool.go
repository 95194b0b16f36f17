package session

import (
	"context"

	"github.com/music-timeline-game/pkg/models"
)

// availableTracks filters a pool down to entries not yet used by this
// session.
func availableTracks(sess *models.Session, pool []models.Track) []models.Track {
	var available []models.Track
	for _, track := range pool {
		if !sess.IsUsed(track.ID) {
			available = append(available, track)
		}
	}
	return available
}

// drawTrack picks an unused track uniformly at random and marks it used.
// When the session's primary pool runs dry the draw switches to the
// shared fallback catalog, a one-way transition. errPoolExhausted means
// both pools are spent: the game ends by current standings.
func (s *Service) drawTrack(ctx context.Context, sess *models.Session) (models.Track, error) {
	var available []models.Track
	if !sess.FallbackEngaged {
		available = availableTracks(sess, sess.PoolSnapshot)
		if len(available) == 0 {
			sess.FallbackEngaged = true
		}
	}
	if sess.FallbackEngaged {
		available = availableTracks(sess, s.catalog.Fallback())
	}
	if len(available) == 0 {
		return models.Track{}, errPoolExhausted
	}

	track := available[s.intn(len(available))]
	sess.UsedTrackIDs = append(sess.UsedTrackIDs, track.ID)

	if year, ok := s.lookupYear(ctx, track.ID); ok {
		track.Year = year
	}

	return track, nil
}

func (s *Service) lookupYear(ctx context.Context, trackID string) (int, bool) {
	if s.years == nil {
		return 0, false
	}
	return s.years.ReleaseYear(ctx, trackID)
}
