package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/music-timeline-game/pkg/models"
)

// SpotifySource fetches custom playlist pools from the Spotify Web API
// using the client-credentials flow (no user login involved).
type SpotifySource struct {
	api *spotify.Client
}

func NewSpotifySource(ctx context.Context, clientID, clientSecret string) (*SpotifySource, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get spotify token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &SpotifySource{api: spotify.New(httpClient)}, nil
}

// PlaylistTracks fetches all playable tracks from a playlist as pool
// entries. Tracks without a release year are skipped; the placement game
// cannot use them.
func (s *SpotifySource) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track

	page, err := s.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
	}

	for {
		for _, item := range page.Items {
			full := item.Track.Track
			if full == nil {
				continue
			}
			track := convertTrack(full)
			if track.Year == 0 {
				continue
			}
			tracks = append(tracks, track)
		}

		err = s.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch next page: %w", err)
		}
	}

	return tracks, nil
}

// TrackYear looks up the release year for a single track id. Used by the
// enrichment cache; callers treat a miss as "no better value known".
func (s *SpotifySource) TrackYear(ctx context.Context, trackID string) (int, error) {
	full, err := s.api.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch track: %w", err)
	}
	return full.Album.ReleaseDateTime().Year(), nil
}

func convertTrack(full *spotify.FullTrack) models.Track {
	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	return models.Track{
		ID:          full.ID.String(),
		Title:       full.Name,
		Artist:      strings.Join(artists, ", "),
		Year:        full.Album.ReleaseDateTime().Year(),
		PlaybackURI: string(full.URI),
	}
}
