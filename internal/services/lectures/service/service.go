// Package service contains lecture session workflows
package service

import (
	"context"
	"math"
	"time"

	"codespeak/internal/adapters/mlsvc"
	"codespeak/internal/core/ident"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/logger"
	pstr "codespeak/internal/platform/strings"
	"codespeak/internal/services/lectures/domain"
	"codespeak/internal/services/lectures/repo"
)

const (
	defaultPage    = 1
	defaultLimit   = 20
	maxLimit       = 100
	searchLimit    = 20
	recorrectBatch = 100
)

// BatchCorrector is the slice of the classifier client recorrect needs
type BatchCorrector interface {
	BatchCorrect(ctx context.Context, snippets []string) mlsvc.BatchResult
}

// Service defines the service contract for lectures
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	repo      repo.Repo
	corrector BatchCorrector
	log       logger.Logger
	now       func() time.Time
}

// New creates a new lectures service
func New(r repo.Repo, corrector BatchCorrector) *Svc {
	if r == nil {
		panic("lectures.Service requires a non nil Repo")
	}
	return &Svc{
		repo:      r,
		corrector: corrector,
		log:       *logger.Named("lectures"),
		now:       time.Now,
	}
}

// Start opens a new lecture session for the caller
func (s *Svc) Start(ctx context.Context, userID string, in domain.StartInput) (domain.StartOutput, error) {
	if details := in.Validate(); len(details) > 0 {
		return domain.StartOutput{}, perr.Validation(details)
	}

	instructor := in.Instructor
	if instructor == "" {
		instructor = domain.DefaultInstructor
	}

	l := domain.Lecture{
		ID:         ident.New(),
		UserID:     userID,
		Title:      in.Title,
		Subject:    in.Subject,
		Instructor: instructor,
		StartTime:  s.now(),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return domain.StartOutput{}, err
	}

	s.log.Info().Str("lecture_id", l.ID).Str("subject", l.Subject).Msg("lecture started")
	return domain.StartOutput{LectureID: l.ID, Message: "Lecture started successfully"}, nil
}

// End closes a lecture and fixes its duration in whole seconds
func (s *Svc) End(ctx context.Context, userID, lectureID string) (domain.EndOutput, error) {
	l, err := s.owned(ctx, userID, lectureID)
	if err != nil {
		return domain.EndOutput{}, err
	}
	if l.EndTime != nil {
		return domain.EndOutput{}, perr.Conflictf("Lecture has already ended")
	}

	end := s.now()
	duration := int(math.Round(end.Sub(l.StartTime).Seconds()))
	if err := s.repo.SetEnd(ctx, lectureID, end, duration); err != nil {
		return domain.EndOutput{}, err
	}

	s.log.Info().Str("lecture_id", lectureID).Int("duration_s", duration).Msg("lecture ended")
	return domain.EndOutput{
		Message: "Lecture ended successfully",
		Lecture: domain.EndedLecture{ID: l.ID, Title: l.Title, Duration: duration},
	}, nil
}

// History lists the caller's lectures newest first
func (s *Svc) History(ctx context.Context, userID string, page, limit int) ([]domain.View, int, error) {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, total, err := s.repo.History(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.View, 0, len(rows))
	for _, l := range rows {
		out = append(out, domain.ViewOf(l))
	}
	return out, total, nil
}

// Get returns a lecture with its resolved snippets, owner only
func (s *Svc) Get(ctx context.Context, userID, lectureID string) (domain.Details, error) {
	l, err := s.owned(ctx, userID, lectureID)
	if err != nil {
		return domain.Details{}, err
	}
	snippets, err := s.repo.SnippetsFor(ctx, lectureID)
	if err != nil {
		return domain.Details{}, err
	}
	return domain.Details{View: domain.ViewOf(l), Snippets: snippets}, nil
}

// Search matches the caller's lectures by title or tag substring
func (s *Svc) Search(ctx context.Context, userID, query string) ([]domain.View, error) {
	if pstr.Fold(query) == "" {
		return nil, perr.Validation([]string{"Search query is required"})
	}

	rows, err := s.repo.Search(ctx, userID, query, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.View, 0, len(rows))
	for _, l := range rows {
		out = append(out, domain.ViewOf(l))
	}
	return out, nil
}

// Delete removes a lecture and everything hanging off it
func (s *Svc) Delete(ctx context.Context, userID, lectureID string) error {
	if _, err := s.owned(ctx, userID, lectureID); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, lectureID); err != nil {
		return err
	}
	s.log.Info().Str("lecture_id", lectureID).Msg("lecture deleted")
	return nil
}

// Recorrect replays the classifier's batch correction over the lecture's
// snippets, at most 100 per call, and applies the returned corrections
func (s *Svc) Recorrect(ctx context.Context, userID, lectureID string) (domain.RecorrectOutput, error) {
	if s.corrector == nil {
		return domain.RecorrectOutput{}, perr.Unavailablef("classifier not configured")
	}
	if _, err := s.owned(ctx, userID, lectureID); err != nil {
		return domain.RecorrectOutput{}, err
	}

	snippets, err := s.repo.SnippetsFor(ctx, lectureID)
	if err != nil {
		return domain.RecorrectOutput{}, err
	}
	if len(snippets) == 0 {
		return domain.RecorrectOutput{Message: "No snippets to correct"}, nil
	}

	corrected := 0
	for start := 0; start < len(snippets); start += recorrectBatch {
		end := start + recorrectBatch
		if end > len(snippets) {
			end = len(snippets)
		}
		chunk := snippets[start:end]

		codes := make([]string, len(chunk))
		for i, sn := range chunk {
			codes[i] = sn.Code
		}

		res := s.corrector.BatchCorrect(ctx, codes)
		if res.Err != nil {
			s.log.Warn().Err(res.Err).Int("chunk", start/recorrectBatch).Msg("recorrect batch skipped")
			continue
		}
		for _, c := range res.Corrections {
			if c.Index < 0 || c.Index >= len(chunk) || c.CorrectedCode == "" {
				continue
			}
			sn := chunk[c.Index]
			if err := s.repo.UpdateSnippet(ctx, sn.ID, c.CorrectedCode, true); err != nil {
				return domain.RecorrectOutput{}, err
			}
			corrected++
		}
	}

	s.log.Info().Str("lecture_id", lectureID).Int("corrected", corrected).Msg("snippets recorrected")
	return domain.RecorrectOutput{
		Message:   "Batch correction complete",
		Snippets:  len(snippets),
		Corrected: corrected,
	}, nil
}

// owned loads a lecture and enforces ownership
func (s *Svc) owned(ctx context.Context, userID, lectureID string) (domain.Lecture, error) {
	if !ident.IsID(lectureID) {
		return domain.Lecture{}, perr.Validation([]string{"Invalid lecture ID"})
	}
	l, err := s.repo.Get(ctx, lectureID)
	if err != nil {
		return domain.Lecture{}, err
	}
	if l.UserID != userID {
		return domain.Lecture{}, perr.Forbiddenf("Not authorized to access this lecture")
	}
	return l, nil
}
