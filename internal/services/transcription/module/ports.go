package module

import (
	"context"

	tdom "codespeak/internal/services/transcription/domain"
	trsvc "codespeak/internal/services/transcription/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptTranscriptionPort adapts the transcription service to the domain port interface
type adaptTranscriptionPort struct{ svc trsvc.Service }

// Process implements the domain ServicePort interface
func (a adaptTranscriptionPort) Process(ctx context.Context, userID string, in tdom.ProcessInput) (tdom.ProcessOutput, error) {
	return a.svc.Process(ctx, userID, in)
}

// Live implements the domain ServicePort interface
func (a adaptTranscriptionPort) Live(ctx context.Context, userID, lectureID string) (tdom.LiveView, error) {
	return a.svc.Live(ctx, userID, lectureID)
}

// Full implements the domain ServicePort interface
func (a adaptTranscriptionPort) Full(ctx context.Context, userID, lectureID, search string) (tdom.FullView, error) {
	return a.svc.Full(ctx, userID, lectureID, search)
}
