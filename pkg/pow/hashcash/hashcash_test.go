package hashcash

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProofOfWork(t *testing.T) {
	// Valid difficulty test
	pow, err := NewProofOfWork(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), pow.GetDifficulty())

	// Invalid difficulty tests
	_, err = NewProofOfWork(0)
	assert.ErrorIs(t, err, ErrDifficultyRange)

	_, err = NewProofOfWork(65)
	assert.ErrorIs(t, err, ErrDifficultyRange)
}

func TestGenerateChallenge(t *testing.T) {
	pow, err := NewProofOfWork(5)
	require.NoError(t, err)

	a, err := pow.GenerateChallenge()
	require.NoError(t, err)
	assert.Len(t, a, tokenLength)

	b, err := pow.GenerateChallenge()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFindSolution(t *testing.T) {
	for _, difficulty := range []uint64{1, 2, 3} {
		pow, err := NewProofOfWork(difficulty)
		require.NoError(t, err)

		challenge, err := pow.GenerateChallenge()
		require.NoError(t, err)

		solution, err := pow.FindSolution(context.Background(), challenge)
		require.NoError(t, err)
		assert.True(t, pow.Verify(challenge, []byte(solution)), "difficulty %d", difficulty)
	}
}

func TestVerifyRejects(t *testing.T) {
	pow, err := NewProofOfWork(4)
	require.NoError(t, err)

	challenge := []byte("challenge")
	solution, err := pow.FindSolution(context.Background(), challenge)
	require.NoError(t, err)

	assert.False(t, pow.Verify(challenge, nil))
	assert.True(t, pow.Verify(challenge, []byte(solution)))
}

func TestFindSolutionCancelled(t *testing.T) {
	pow, err := NewProofOfWork(maxDifficulty)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pow.FindSolution(ctx, []byte("challenge"))
	assert.ErrorIs(t, err, ErrTimeout)
}
