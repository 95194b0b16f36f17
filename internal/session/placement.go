package session

import "github.com/music-timeline-game/pkg/models"

// IsPlacementCorrect reports whether candidateYear can sit at index in a
// year-sorted timeline. Boundary comparisons are inclusive on purpose:
// ties are accepted on either adjacent side. Total over all indexes; an
// out-of-range index is treated as the nearest end.
func IsPlacementCorrect(timeline []models.TimelineSong, candidateYear, index int) bool {
	if len(timeline) == 0 {
		return true
	}
	if index <= 0 {
		return candidateYear <= timeline[0].Year
	}
	if index >= len(timeline) {
		return candidateYear >= timeline[len(timeline)-1].Year
	}
	return timeline[index-1].Year <= candidateYear && candidateYear <= timeline[index].Year
}

// insertSong places a song into a timeline at its year-sorted position
// and returns the new slice.
func insertSong(timeline []models.TimelineSong, song models.TimelineSong) []models.TimelineSong {
	at := len(timeline)
	for i, entry := range timeline {
		if entry.Year > song.Year {
			at = i
			break
		}
	}

	timeline = append(timeline, models.TimelineSong{})
	copy(timeline[at+1:], timeline[at:])
	timeline[at] = song
	return timeline
}
