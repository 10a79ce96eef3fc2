package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewPercentage vérifie les bornes de validation
func TestNewPercentage(t *testing.T) {
	p, err := NewPercentage(97.5)
	require.NoError(t, err)
	assert.True(t, p.IsDefined())
	assert.Equal(t, 97.5, p.Value())

	for _, value := range []float64{0, 100} {
		p, err := NewPercentage(value)
		require.NoError(t, err)
		assert.Equal(t, value, p.Value())
	}

	for _, value := range []float64{-0.01, 100.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewPercentage(value)
		assert.Error(t, err, "value %v should be rejected", value)
	}
}

// TestUndefinedPercentage vérifie l'état "aucune donnée à mesurer"
func TestUndefinedPercentage(t *testing.T) {
	p := UndefinedPercentage()
	assert.False(t, p.IsDefined())
	assert.False(t, p.AtLeast(0), "undefined never reaches a threshold")
}

// TestPercentageAtLeast vérifie la comparaison au seuil (borne inclusive)
func TestPercentageAtLeast(t *testing.T) {
	p, err := NewPercentage(95)
	require.NoError(t, err)

	assert.True(t, p.AtLeast(95), "rate equal to threshold passes")
	assert.True(t, p.AtLeast(90))
	assert.False(t, p.AtLeast(95.01))
}
