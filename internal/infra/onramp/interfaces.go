package onramp

import "context"

type SessionClientInterface interface {
	CreateSession(ctx context.Context, req SessionRequest) (string, error)
}

var _ SessionClientInterface = (*Client)(nil)
