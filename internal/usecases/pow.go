package usecases

import (
	"fmt"

	"stanbot/internal/domain"
	"stanbot/pkg/pow/hashcash"
)

// PowUsecase defines the interface for the proof of work handshake.
type PowUsecase interface {
	Enabled() bool
	GenerateChallenge() (*domain.ProofOfWork, error)
	ValidateSolution(challenge, nonce []byte) bool
}

type powUsecaseImpl struct {
	hashcash *hashcash.ProofOfWork
}

// NewPowUsecase initializes the handshake with the specified difficulty.
// Difficulty 0 disables it: no challenge is issued and every solution passes.
func NewPowUsecase(difficulty uint64) (PowUsecase, error) {
	if difficulty == 0 {
		return &powUsecaseImpl{}, nil
	}
	pow, err := hashcash.NewProofOfWork(difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hashcash: %w", err)
	}
	return &powUsecaseImpl{hashcash: pow}, nil
}

func (p *powUsecaseImpl) Enabled() bool {
	return p.hashcash != nil
}

// GenerateChallenge creates a new challenge using the hashcash package.
// When the handshake is disabled it returns an empty challenge of difficulty 0.
func (p *powUsecaseImpl) GenerateChallenge() (*domain.ProofOfWork, error) {
	if !p.Enabled() {
		return &domain.ProofOfWork{}, nil
	}
	challenge, err := p.hashcash.GenerateChallenge()
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}
	return &domain.ProofOfWork{
		Challenge:  challenge,
		Difficulty: p.hashcash.GetDifficulty(),
	}, nil
}

// ValidateSolution checks if the provided nonce is valid for the given challenge.
func (p *powUsecaseImpl) ValidateSolution(challenge, nonce []byte) bool {
	if !p.Enabled() {
		return true
	}
	if len(challenge) == 0 || len(nonce) == 0 {
		return false
	}
	return p.hashcash.Verify(challenge, nonce)
}
