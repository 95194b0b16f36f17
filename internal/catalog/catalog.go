// Package catalog supplies the song pools sessions draw from: a built-in
// catalog shared by every session, and optionally a custom Spotify
// playlist per session.
package catalog

import (
	"context"
	"log"
	"math/rand"

	"github.com/music-timeline-game/pkg/models"
)

// primaryPoolSize is how many catalog entries a session's primary pool
// samples when no custom playlist is configured. The full catalog stays
// available as the fallback pool.
const primaryPoolSize = 40

type Catalog struct {
	spotify *SpotifySource
}

// New returns a catalog. spotify may be nil, in which case custom
// playlist sources are unavailable and sessions use the built-in catalog.
func New(spotify *SpotifySource) *Catalog {
	return &Catalog{spotify: spotify}
}

// Fallback returns the full built-in catalog, shared across all sessions.
// Used-track bookkeeping is per session, never on the catalog itself.
func (c *Catalog) Fallback() []models.Track {
	return builtinTracks
}

// PrimaryPool builds the primary pool for one playthrough. A configured
// custom playlist takes priority; any failure fetching it degrades to the
// built-in catalog rather than blocking game start.
func (c *Catalog) PrimaryPool(ctx context.Context, rules models.Rules, rng *rand.Rand) []models.Track {
	if rules.CustomPlaylistID != "" && c.spotify != nil {
		tracks, err := c.spotify.PlaylistTracks(ctx, rules.CustomPlaylistID)
		if err != nil {
			log.Printf("Failed to fetch playlist %s, using built-in catalog: %v", rules.CustomPlaylistID, err)
		} else if len(tracks) > 0 {
			return tracks
		}
	}

	return sampleTracks(builtinTracks, primaryPoolSize, rng)
}

func sampleTracks(tracks []models.Track, n int, rng *rand.Rand) []models.Track {
	perm := rng.Perm(len(tracks))
	if n > len(tracks) {
		n = len(tracks)
	}

	sample := make([]models.Track, 0, n)
	for _, i := range perm[:n] {
		sample = append(sample, tracks[i])
	}
	return sample
}
