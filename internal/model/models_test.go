package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestV1Animation_CelCount(t *testing.T) {
	anim := &V1Animation{
		XSheet: V1XSheet{
			Frames: []V1Frame{
				{Name: "f1", Cels: []V1Cel{{UUID: "a"}, {UUID: "b"}}},
				{Name: "f2"},
				{Name: "f3", Cels: []V1Cel{{UUID: "a"}}},
			},
		},
	}

	assert.Equal(t, 3, anim.CelCount())
}

func TestV2Animation_CelNames(t *testing.T) {
	anim := &V2Animation{
		Cels: []V2Cel{
			{Type: CelTypePNG, Name: "b"},
			{Type: CelTypePNG, Name: "a"},
			{Type: CelTypePNG, Name: "b"},
		},
	}

	assert.Equal(t, []string{"b", "a"}, anim.CelNames())
}

func TestV2Animation_Find(t *testing.T) {
	anim := &V2Animation{
		Cels:   []V2Cel{{Type: CelTypePNG, Name: "a", W: 4, H: 2}},
		Frames: []V2Frame{{Name: "walk-1"}},
	}

	cel, ok := anim.FindCel("a")
	assert.True(t, ok)
	assert.Equal(t, 4, cel.W)

	_, ok = anim.FindCel("missing")
	assert.False(t, ok)

	frame, ok := anim.FindFrame("walk-1")
	assert.True(t, ok)
	assert.Equal(t, "walk-1", frame.Name)

	_, ok = anim.FindFrame("walk-2")
	assert.False(t, ok)
}
