package domain

import "context"

// ServicePort defines the lectures service contract
type ServicePort interface {
	Start(ctx context.Context, userID string, in StartInput) (StartOutput, error)
	End(ctx context.Context, userID, lectureID string) (EndOutput, error)
	History(ctx context.Context, userID string, page, limit int) ([]View, int, error)
	Get(ctx context.Context, userID, lectureID string) (Details, error)
	Search(ctx context.Context, userID, query string) ([]View, error)
	Delete(ctx context.Context, userID, lectureID string) error
	Recorrect(ctx context.Context, userID, lectureID string) (RecorrectOutput, error)
}
