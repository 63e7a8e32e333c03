package domain

import "context"

// ServicePort defines the auth service contract
type ServicePort interface {
	Register(ctx context.Context, in RegisterInput) (AuthOutput, error)
	Login(ctx context.Context, in LoginInput) (AuthOutput, error)

	// Verify checks a bearer token and resolves the account it names
	Verify(ctx context.Context, token string) (userID string, err error)
}
