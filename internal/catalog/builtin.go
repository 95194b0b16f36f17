package catalog

import "github.com/music-timeline-game/pkg/models"

// builtinTracks is the static shared catalog backing every session's
// fallback pool. Entries are immutable; sessions track usage themselves.
var builtinTracks = []models.Track{
	{ID: "3AhXZa8sUQht0UEdBJgpGc", Title: "Like a Rolling Stone", Artist: "Bob Dylan", Year: 1965, PlaybackURI: "spotify:track:3AhXZa8sUQht0UEdBJgpGc"},
	{ID: "7tFiyTwD0nx5a1eklYtX2J", Title: "Bohemian Rhapsody", Artist: "Queen", Year: 1975, PlaybackURI: "spotify:track:7tFiyTwD0nx5a1eklYtX2J"},
	{ID: "5CQ30WqJwcep0pYcV4AMNc", Title: "Stairway to Heaven", Artist: "Led Zeppelin", Year: 1971, PlaybackURI: "spotify:track:5CQ30WqJwcep0pYcV4AMNc"},
	{ID: "0wJoRiX5K5BxlqZTolB2LD", Title: "Purple Rain", Artist: "Prince", Year: 1984, PlaybackURI: "spotify:track:0wJoRiX5K5BxlqZTolB2LD"},
	{ID: "5ChkMS8OtdzJeqyybCc9R5", Title: "Billie Jean", Artist: "Michael Jackson", Year: 1982, PlaybackURI: "spotify:track:5ChkMS8OtdzJeqyybCc9R5"},
	{ID: "4u7EnebtmKWzUH433cf5Qv", Title: "Smells Like Teen Spirit", Artist: "Nirvana", Year: 1991, PlaybackURI: "spotify:track:4u7EnebtmKWzUH433cf5Qv"},
	{ID: "7snQQk1zcKl8gZ92AnueZW", Title: "Sweet Child O' Mine", Artist: "Guns N' Roses", Year: 1987, PlaybackURI: "spotify:track:7snQQk1zcKl8gZ92AnueZW"},
	{ID: "1lCRw5FEZ1gPDNPzy1K4zW", Title: "Superstition", Artist: "Stevie Wonder", Year: 1972, PlaybackURI: "spotify:track:1lCRw5FEZ1gPDNPzy1K4zW"},
	{ID: "4gphxUgq0JSFv2BCLhNDiE", Title: "Jailhouse Rock", Artist: "Elvis Presley", Year: 1957, PlaybackURI: "spotify:track:4gphxUgq0JSFv2BCLhNDiE"},
	{ID: "6dGnYIeXmHdcikdzNNDMm2", Title: "Here Comes the Sun", Artist: "The Beatles", Year: 1969, PlaybackURI: "spotify:track:6dGnYIeXmHdcikdzNNDMm2"},
	{ID: "7pKfPomDEeI4TPT6EOYjn9", Title: "Imagine", Artist: "John Lennon", Year: 1971, PlaybackURI: "spotify:track:7pKfPomDEeI4TPT6EOYjn9"},
	{ID: "3SdTKo2uVsxFblQjpScoHy", Title: "Stand by Me", Artist: "Ben E. King", Year: 1961, PlaybackURI: "spotify:track:3SdTKo2uVsxFblQjpScoHy"},
	{ID: "5ghIJDpPoe3CfHMGu71E6T", Title: "Smooth Criminal", Artist: "Michael Jackson", Year: 1988, PlaybackURI: "spotify:track:5ghIJDpPoe3CfHMGu71E6T"},
	{ID: "1i6N76fftMZhijOzFQ5ZtL", Title: "Dancing Queen", Artist: "ABBA", Year: 1976, PlaybackURI: "spotify:track:1i6N76fftMZhijOzFQ5ZtL"},
	{ID: "2takcwOaAZWiXQijPHIx7B", Title: "Time After Time", Artist: "Cyndi Lauper", Year: 1983, PlaybackURI: "spotify:track:2takcwOaAZWiXQijPHIx7B"},
	{ID: "5W3cjX2J3tjhG8zb6u0qHn", Title: "September", Artist: "Earth, Wind & Fire", Year: 1978, PlaybackURI: "spotify:track:5W3cjX2J3tjhG8zb6u0qHn"},
	{ID: "2WfaOiMkCvy7F5fcp2zZ8L", Title: "Take On Me", Artist: "a-ha", Year: 1985, PlaybackURI: "spotify:track:2WfaOiMkCvy7F5fcp2zZ8L"},
	{ID: "1AhDOtG9vPSOmsWgNW0BEY", Title: "Bohemian Like You", Artist: "The Dandy Warhols", Year: 2000, PlaybackURI: "spotify:track:1AhDOtG9vPSOmsWgNW0BEY"},
	{ID: "0VjIjW4GlUZAMYd2vXMi3b", Title: "Blinding Lights", Artist: "The Weeknd", Year: 2019, PlaybackURI: "spotify:track:0VjIjW4GlUZAMYd2vXMi3b"},
	{ID: "7qiZfU4dY1lWllzX7mPBI3", Title: "Shape of You", Artist: "Ed Sheeran", Year: 2017, PlaybackURI: "spotify:track:7qiZfU4dY1lWllzX7mPBI3"},
	{ID: "32OlwWuMpZ6b0aN2RZOeMS", Title: "Uptown Funk", Artist: "Mark Ronson", Year: 2014, PlaybackURI: "spotify:track:32OlwWuMpZ6b0aN2RZOeMS"},
	{ID: "0SiywuOBRcynK0uKGWdCnn", Title: "Bad Romance", Artist: "Lady Gaga", Year: 2009, PlaybackURI: "spotify:track:0SiywuOBRcynK0uKGWdCnn"},
	{ID: "4uLU6hMCjMI75M1A2tKUQC", Title: "Never Gonna Give You Up", Artist: "Rick Astley", Year: 1987, PlaybackURI: "spotify:track:4uLU6hMCjMI75M1A2tKUQC"},
	{ID: "1Je1IMUlBXcx1Fz0WE7oPT", Title: "Wannabe", Artist: "Spice Girls", Year: 1996, PlaybackURI: "spotify:track:1Je1IMUlBXcx1Fz0WE7oPT"},
	{ID: "3MjUtNVVq3C8Fn0MP3zhXa", Title: "...Baby One More Time", Artist: "Britney Spears", Year: 1998, PlaybackURI: "spotify:track:3MjUtNVVq3C8Fn0MP3zhXa"},
	{ID: "0DiWol3AO6WpXZgp0goxAV", Title: "One More Time", Artist: "Daft Punk", Year: 2000, PlaybackURI: "spotify:track:0DiWol3AO6WpXZgp0goxAV"},
	{ID: "3n3Ppam7vgaVa1iaRUc9Lp", Title: "Mr. Brightside", Artist: "The Killers", Year: 2004, PlaybackURI: "spotify:track:3n3Ppam7vgaVa1iaRUc9Lp"},
	{ID: "7BKLCZ1jbUBVqRi2FVlTVw", Title: "Closer", Artist: "The Chainsmokers", Year: 2016, PlaybackURI: "spotify:track:7BKLCZ1jbUBVqRi2FVlTVw"},
	{ID: "6habFhsOp2NvshLv26DqMb", Title: "Despacito", Artist: "Luis Fonsi", Year: 2017, PlaybackURI: "spotify:track:6habFhsOp2NvshLv26DqMb"},
	{ID: "2Fxmhks0bxGSBdJ92vM42m", Title: "bad guy", Artist: "Billie Eilish", Year: 2019, PlaybackURI: "spotify:track:2Fxmhks0bxGSBdJ92vM42m"},
	{ID: "39LLxExYz6ewLAcYrzQQyP", Title: "Levitating", Artist: "Dua Lipa", Year: 2020, PlaybackURI: "spotify:track:39LLxExYz6ewLAcYrzQQyP"},
	{ID: "4Dvkj6JhhA12EX05fT7y2e", Title: "As It Was", Artist: "Harry Styles", Year: 2022, PlaybackURI: "spotify:track:4Dvkj6JhhA12EX05fT7y2e"},
	{ID: "1BxfuPKGuaTgP7aM0Bbdwr", Title: "Cruel Summer", Artist: "Taylor Swift", Year: 2019, PlaybackURI: "spotify:track:1BxfuPKGuaTgP7aM0Bbdwr"},
	{ID: "0tgVpDi06FyKpA1z0VMD4v", Title: "Perfect", Artist: "Ed Sheeran", Year: 2017, PlaybackURI: "spotify:track:0tgVpDi06FyKpA1z0VMD4v"},
	{ID: "5Z01UMMf7V1o0MzF86s6WJ", Title: "Lose Yourself", Artist: "Eminem", Year: 2002, PlaybackURI: "spotify:track:5Z01UMMf7V1o0MzF86s6WJ"},
	{ID: "3DK6m7It6Pw857FcQftMds", Title: "Runaway", Artist: "Kanye West", Year: 2010, PlaybackURI: "spotify:track:3DK6m7It6Pw857FcQftMds"},
	{ID: "0u2P5u6lvoDfwTYjAADbn4", Title: "lovely", Artist: "Billie Eilish", Year: 2018, PlaybackURI: "spotify:track:0u2P5u6lvoDfwTYjAADbn4"},
	{ID: "6DCZcSspjsKoFjzjrWoCdn", Title: "God's Plan", Artist: "Drake", Year: 2018, PlaybackURI: "spotify:track:6DCZcSspjsKoFjzjrWoCdn"},
	{ID: "2XU0oxnq2qxCpomAAuJY8K", Title: "Dance Monkey", Artist: "Tones and I", Year: 2019, PlaybackURI: "spotify:track:2XU0oxnq2qxCpomAAuJY8K"},
	{ID: "463CkQjx2Zk1yXoBuierM9", Title: "Levels", Artist: "Avicii", Year: 2011, PlaybackURI: "spotify:track:463CkQjx2Zk1yXoBuierM9"},
	{ID: "2dpaYNEQHiRxtZbfNsse99", Title: "Happier", Artist: "Marshmello", Year: 2018, PlaybackURI: "spotify:track:2dpaYNEQHiRxtZbfNsse99"},
	{ID: "60nZcImufyMA1MKQY3dcCH", Title: "Happy", Artist: "Pharrell Williams", Year: 2013, PlaybackURI: "spotify:track:60nZcImufyMA1MKQY3dcCH"},
	{ID: "3ee8Jmje8o58CHK66QrVC2", Title: "SAD!", Artist: "XXXTENTACION", Year: 2018, PlaybackURI: "spotify:track:3ee8Jmje8o58CHK66QrVC2"},
	{ID: "5uCax9HTNlzGybIStD3vDh", Title: "Say You Won't Let Go", Artist: "James Arthur", Year: 2016, PlaybackURI: "spotify:track:5uCax9HTNlzGybIStD3vDh"},
	{ID: "0e7ipj03S05BNilyu5bRzt", Title: "rockstar", Artist: "Post Malone", Year: 2017, PlaybackURI: "spotify:track:0e7ipj03S05BNilyu5bRzt"},
	{ID: "5MhsZlmKJG6X5kTHkdwC4B", Title: "Hotel California", Artist: "Eagles", Year: 1976, PlaybackURI: "spotify:track:5MhsZlmKJG6X5kTHkdwC4B"},
	{ID: "3gdewACMIVMEWVbyb8O9sY", Title: "Rolling in the Deep", Artist: "Adele", Year: 2010, PlaybackURI: "spotify:track:3gdewACMIVMEWVbyb8O9sY"},
	{ID: "1zwMYTA5nlNjZxYrvBB2pV", Title: "Someone Like You", Artist: "Adele", Year: 2011, PlaybackURI: "spotify:track:1zwMYTA5nlNjZxYrvBB2pV"},
	{ID: "0GjEhVFGZW8afUYGChu3Rr", Title: "Africa", Artist: "Toto", Year: 1982, PlaybackURI: "spotify:track:0GjEhVFGZW8afUYGChu3Rr"},
	{ID: "4RvWPyQ5RL0ao9LPZeSouE", Title: "Everybody Wants To Rule The World", Artist: "Tears For Fears", Year: 1985, PlaybackURI: "spotify:track:4RvWPyQ5RL0ao9LPZeSouE"},
}
