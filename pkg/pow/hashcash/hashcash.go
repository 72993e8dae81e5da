// Package hashcash implements a CPU-bound proof of work: the client must
// find a nonce such that the SHA-256 hash of challenge+nonce, written in
// hex, starts with as many zeros as the difficulty asks for.
//
// Verifying costs one hash; finding a nonce costs about 16^difficulty
// hashes, so the server can make each connection pay a little before it
// gets to talk to the robot.
package hashcash

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	tokenLength   = 16
	maxDifficulty = 64 // Maximum possible difficulty (SHA-256 output length)

	// how many nonces to try between context checks
	checkEvery = 1 << 12
)

var (
	ErrDifficultyRange = errors.New("difficulty out of acceptable range")
	ErrGenerateRandom  = errors.New("failed to generate random challenge")
	ErrTimeout         = errors.New("solution computation timed out")
)

// ProofOfWork encapsulates a proof-of-work mechanism.
type ProofOfWork struct {
	difficultyLevel uint64
	prefix          string
}

// NewProofOfWork initializes a ProofOfWork with a specified difficulty.
func NewProofOfWork(difficulty uint64) (*ProofOfWork, error) {
	if difficulty < 1 || difficulty > maxDifficulty {
		return nil, fmt.Errorf("%w: difficulty must be between 1 and %d", ErrDifficultyRange, maxDifficulty)
	}

	return &ProofOfWork{
		difficultyLevel: difficulty,
		prefix:          strings.Repeat("0", int(difficulty)),
	}, nil
}

// GenerateChallenge creates a new challenge using cryptographically secure random numbers.
func (pow *ProofOfWork) GenerateChallenge() ([]byte, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerateRandom, err)
	}
	return bytes, nil
}

// Verify checks if the provided solution satisfies the challenge.
func (pow *ProofOfWork) Verify(challenge, solution []byte) bool {
	if len(solution) == 0 {
		return false
	}
	return pow.matches(challenge, solution)
}

func (pow *ProofOfWork) GetDifficulty() uint64 {
	return pow.difficultyLevel
}

// FindSolution searches nonces 0, 1, 2... until one satisfies the challenge
// or ctx is done.
func (pow *ProofOfWork) FindSolution(ctx context.Context, challenge []byte) (string, error) {
	buf := make([]byte, 0, 20)
	for nonce := uint64(0); ; nonce++ {
		if nonce%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("%w: %v", ErrTimeout, err)
			}
		}

		buf = strconv.AppendUint(buf[:0], nonce, 10)
		if pow.matches(challenge, buf) {
			return string(buf), nil
		}
	}
}

func (pow *ProofOfWork) matches(challenge, solution []byte) bool {
	h := sha256.New()
	h.Write(challenge)
	h.Write(solution)
	return strings.HasPrefix(hex.EncodeToString(h.Sum(nil)), pow.prefix)
}
