package module

import (
	"context"

	lecdom "codespeak/internal/services/lectures/domain"
	lecsvc "codespeak/internal/services/lectures/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptLecturesPort adapts the lectures service to the domain port interface
type adaptLecturesPort struct{ svc lecsvc.Service }

// Start implements the domain ServicePort interface
func (a adaptLecturesPort) Start(ctx context.Context, userID string, in lecdom.StartInput) (lecdom.StartOutput, error) {
	return a.svc.Start(ctx, userID, in)
}

// End implements the domain ServicePort interface
func (a adaptLecturesPort) End(ctx context.Context, userID, lectureID string) (lecdom.EndOutput, error) {
	return a.svc.End(ctx, userID, lectureID)
}

// History implements the domain ServicePort interface
func (a adaptLecturesPort) History(ctx context.Context, userID string, page, limit int) ([]lecdom.View, int, error) {
	return a.svc.History(ctx, userID, page, limit)
}

// Get implements the domain ServicePort interface
func (a adaptLecturesPort) Get(ctx context.Context, userID, lectureID string) (lecdom.Details, error) {
	return a.svc.Get(ctx, userID, lectureID)
}

// Search implements the domain ServicePort interface
func (a adaptLecturesPort) Search(ctx context.Context, userID, query string) ([]lecdom.View, error) {
	return a.svc.Search(ctx, userID, query)
}

// Delete implements the domain ServicePort interface
func (a adaptLecturesPort) Delete(ctx context.Context, userID, lectureID string) error {
	return a.svc.Delete(ctx, userID, lectureID)
}

// Recorrect implements the domain ServicePort interface
func (a adaptLecturesPort) Recorrect(ctx context.Context, userID, lectureID string) (lecdom.RecorrectOutput, error) {
	return a.svc.Recorrect(ctx, userID, lectureID)
}
