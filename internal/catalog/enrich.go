package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const yearCacheTTL = 30 * 24 * time.Hour

// Enricher resolves a better release year for a track id, backed by a
// Redis cache in front of the Spotify lookup. Any failure simply leaves
// the caller's catalog year in place.
type Enricher struct {
	cache   *redis.Client
	spotify *SpotifySource
}

func NewEnricher(cache *redis.Client, spotify *SpotifySource) *Enricher {
	return &Enricher{cache: cache, spotify: spotify}
}

func yearKey(trackID string) string {
	return fmt.Sprintf("year:%s", trackID)
}

// ReleaseYear returns the cached or freshly looked-up release year for a
// track, and whether a value was found.
func (e *Enricher) ReleaseYear(ctx context.Context, trackID string) (int, bool) {
	if e.cache != nil {
		val, err := e.cache.Get(ctx, yearKey(trackID)).Result()
		if err == nil {
			year, convErr := strconv.Atoi(val)
			if convErr == nil && year > 0 {
				return year, true
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Year cache read failed for %s: %v", trackID, err)
		}
	}

	if e.spotify == nil {
		return 0, false
	}

	year, err := e.spotify.TrackYear(ctx, trackID)
	if err != nil || year == 0 {
		return 0, false
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, yearKey(trackID), strconv.Itoa(year), yearCacheTTL).Err(); err != nil {
			log.Printf("Year cache write failed for %s: %v", trackID, err)
		}
	}

	return year, true
}
