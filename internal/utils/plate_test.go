package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		"hr26ct1871":    "HR26CT1871",
		"DL 8C AB 1234": "DL8CAB1234",
		"mh-12/ab-9999": "MH12AB9999",
		"  ":            "",
		"ДЛ8CX9291":     "8CX9291",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePlate(in), in)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.2, Round2(0.2*1.0))
	assert.Equal(t, 0.06, Round2(0.2*0.3))
	assert.Equal(t, 0.19, Round2(0.2*0.95))
	assert.Equal(t, 1.0, Round2(1.0))
}
