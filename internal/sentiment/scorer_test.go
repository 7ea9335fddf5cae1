package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Score(t *testing.T) {
	s := NewStatic(70)

	score, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 70, score)
}

func TestNewStatic_Clamps(t *testing.T) {
	low, err := NewStatic(-5).Score(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, 0, low)

	high, err := NewStatic(150).Score(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, 100, high)
}
