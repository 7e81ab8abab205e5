package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

// TokenService is a testify mock of auth.TokenService.
type TokenService struct {
	mock.Mock
}

var _ auth.TokenService = (*TokenService)(nil)

func (m *TokenService) Issue(ctx context.Context, userID uuid.UUID, email string) (*auth.TokenPair, error) {
	args := m.Called(ctx, userID, email)
	if pair, ok := args.Get(0).(*auth.TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TokenService) Renew(ctx context.Context, refreshToken string) (string, *auth.Claims, error) {
	args := m.Called(ctx, refreshToken)
	claims, _ := args.Get(1).(*auth.Claims)
	return args.String(0), claims, args.Error(2)
}

func (m *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *TokenService) ValidateAccess(ctx context.Context, accessToken string) (*auth.Claims, error) {
	args := m.Called(ctx, accessToken)
	if claims, ok := args.Get(0).(*auth.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}
