package usecases

import (
	"context"
	"fmt"

	"stanbot/pkg/pow/hashcash"
)

type SolverUsecase interface {
	FindSolution(ctx context.Context, challenge []byte, difficulty uint64) (string, error)
}

type solverUsecaseImpl struct{}

// NewSolverUsecase returns a solver that accepts whatever difficulty the server asks for.
func NewSolverUsecase() SolverUsecase {
	return &solverUsecaseImpl{}
}

func (s *solverUsecaseImpl) FindSolution(ctx context.Context, challenge []byte, difficulty uint64) (string, error) {
	pow, err := hashcash.NewProofOfWork(difficulty)
	if err != nil {
		return "", fmt.Errorf("failed to initialize hashcash: %w", err)
	}
	return pow.FindSolution(ctx, challenge)
}
