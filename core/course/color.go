package course

import (
	"fmt"
	"math/rand"
)

// Palette is the set of preferred course colours.
var Palette = []string{
	"#4285f4", "#ea4335", "#fbbc04", "#34a853", "#ff6d01",
	"#46bdc6", "#7b1fa2", "#e67c73", "#d50000", "#e65100",
}

const maxRandomColorAttempts = 32

// GenerateColor picks a palette colour not in used, or a random hex colour once the palette is exhausted.
func GenerateColor(rnd *rand.Rand, used map[string]bool) string {
	free := make([]string, 0, len(Palette))
	for _, c := range Palette {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) > 0 {
		return free[rnd.Intn(len(free))]
	}

	var c string
	for i := 0; i < maxRandomColorAttempts; i++ {
		c = fmt.Sprintf("#%06x", rnd.Intn(0x1000000))
		if !used[c] {
			break
		}
	}
	return c
}

// FixDuplicateColors gives a fresh colour to every course whose colour is already taken by an
// earlier course. It reports whether anything changed.
func FixDuplicateColors(rnd *rand.Rand, courses []Course) bool {
	used := make(map[string]bool, len(courses))
	keep := make([]bool, len(courses))
	for i, c := range courses {
		if c.Color != "" && !used[c.Color] {
			used[c.Color] = true
			keep[i] = true
		}
	}

	var changed bool
	for i := range courses {
		if keep[i] {
			continue
		}
		courses[i].Color = GenerateColor(rnd, used)
		used[courses[i].Color] = true
		changed = true
	}
	return changed
}
