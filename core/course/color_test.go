package course_test

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courseflow/backend/core/course"
)

func TestGenerateColor(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	used := make(map[string]bool)
	for _, c := range course.Palette[1:] {
		used[c] = true
	}
	assert.Equal(t, course.Palette[0], course.GenerateColor(rnd, used), "the only unused palette color")

	used[course.Palette[0]] = true
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for i := 0; i < 20; i++ {
		c := course.GenerateColor(rnd, used)
		assert.Regexp(t, hex, c)
		assert.False(t, used[c])
	}
}

func TestFixDuplicateColors(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	red, blue := course.Palette[1], course.Palette[0]

	courses := []course.Course{{ID: 1, Color: red}, {ID: 2, Color: red}, {ID: 3, Color: blue}, {ID: 4}}
	assert.True(t, course.FixDuplicateColors(rnd, courses))

	assert.Equal(t, red, courses[0].Color)
	assert.Equal(t, blue, courses[2].Color)
	seen := make(map[string]bool)
	for _, c := range courses {
		assert.NotEmpty(t, c.Color)
		assert.False(t, seen[c.Color], "duplicate color %s", c.Color)
		seen[c.Color] = true
	}

	assert.False(t, course.FixDuplicateColors(rnd, courses))
}
