package alarmapi

import (
	"context"

	pkgerrors "pillbox-backend/pkg/errors"
)

// StaticTokenSource hands out a pre-acquired push token. The platform
// push SDK owns permission prompts and token refresh; hosts feed the
// current token in here.
type StaticTokenSource struct {
	token string
}

// NewStaticTokenSource wraps an already-acquired token
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the held token; an empty one means acquisition never
// happened and alarm activation must abort
func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", pkgerrors.NewUnavailableError("no push token available")
	}
	return s.token, nil
}
