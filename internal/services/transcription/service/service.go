// Package service contains the transcript ingestion pipeline and reads
package service

import (
	"context"
	"time"
	"unicode/utf8"

	"codespeak/internal/adapters/mlsvc"
	"codespeak/internal/core/ident"
	"codespeak/internal/core/ratelimit"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/logger"
	pstr "codespeak/internal/platform/strings"
	"codespeak/internal/services/transcription/domain"
	"codespeak/internal/services/transcription/repo"
)

// liveTail is how many entries the live view returns
const liveTail = 20

// Classifier is the slice of the classifier client the pipeline needs
type Classifier interface {
	DetectCode(ctx context.Context, text string) mlsvc.Detection
}

// Service defines the service contract for transcription
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	repo       repo.Repo
	classifier Classifier
	limiter    *ratelimit.Limiter
	log        logger.Logger
}

// New creates a new transcription service
func New(r repo.Repo, classifier Classifier, limiter *ratelimit.Limiter) *Svc {
	if r == nil {
		panic("transcription.Service requires a non nil Repo")
	}
	if classifier == nil {
		panic("transcription.Service requires a non nil Classifier")
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Options{})
	}
	return &Svc{
		repo:       r,
		classifier: classifier,
		limiter:    limiter,
		log:        *logger.Named("transcription"),
	}
}

// Process runs the ingestion pipeline for one transcript chunk
// steps run in a fixed order and each failing step terminates the call;
// nothing is persisted before the final step
func (s *Svc) Process(ctx context.Context, userID string, in domain.ProcessInput) (domain.ProcessOutput, error) {
	// 1: rate check, before any other work
	if !s.limiter.Allow(userID) {
		return domain.ProcessOutput{}, perr.TooManyRequestsf("Too many transcription requests, please slow down")
	}

	// 2: validate, reporting every violation at once
	if details := in.Validate(); len(details) > 0 {
		return domain.ProcessOutput{}, perr.Validation(details)
	}

	// 3: load and authorize
	lec, err := s.repo.Lecture(ctx, in.LectureID)
	if err != nil {
		return domain.ProcessOutput{}, err
	}
	if lec.UserID != userID {
		return domain.ProcessOutput{}, perr.Forbiddenf("Not authorized to access this lecture")
	}

	// 4: classify; failures degrade to the fallback and never stop the pipeline
	det := s.classifier.DetectCode(ctx, in.Text)
	if det.Fallback {
		s.log.Warn().Err(det.Err).Str("lecture_id", in.LectureID).Msg("classifier fallback")
	}

	// 5: transcript entry from the corrected text
	entry := domain.TranscriptEntry{
		LectureID:    in.LectureID,
		Timestamp:    in.Timestamp,
		Text:         det.CorrectedText,
		IsCode:       det.IsCode,
		CodeLanguage: det.Language,
		Confidence:   det.Confidence,
	}

	// 6: snippet only above the strict confidence bar
	var snippet *domain.CodeSnippet
	if det.IsCode && det.Confidence > domain.SnippetThreshold {
		code := truncateCode(det.CorrectedText)
		snippet = &domain.CodeSnippet{
			ID:                 ident.New(),
			LectureID:          in.LectureID,
			Code:               code,
			Language:           domain.NormalizeLanguage(det.Language),
			Timestamp:          in.Timestamp,
			OriginalTranscript: in.Text,
			IsCorrected:        det.CorrectedText != in.Text,
			Confidence:         det.Confidence,
		}
	}

	// 7: persist entry and snippet together
	start := time.Now()
	if err := s.repo.Persist(ctx, entry, snippet); err != nil {
		return domain.ProcessOutput{}, err
	}
	s.log.Debug().
		Str("lecture_id", in.LectureID).
		Bool("is_code", det.IsCode).
		Bool("snippet", snippet != nil).
		Dur("persist", time.Since(start)).
		Msg("chunk processed")

	return domain.ProcessOutput{
		Success:       true,
		IsCode:        det.IsCode,
		CorrectedText: det.CorrectedText,
		Language:      det.Language,
		Confidence:    det.Confidence,
	}, nil
}

// Live returns the last entries of a lecture the caller owns
func (s *Svc) Live(ctx context.Context, userID, lectureID string) (domain.LiveView, error) {
	if _, err := s.owned(ctx, userID, lectureID); err != nil {
		return domain.LiveView{}, err
	}
	entries, err := s.repo.Tail(ctx, lectureID, liveTail)
	if err != nil {
		return domain.LiveView{}, err
	}
	if entries == nil {
		entries = []domain.TranscriptEntry{}
	}
	return domain.LiveView{LectureID: lectureID, Entries: entries}, nil
}

// Full returns the whole transcript with resolved snippets, optionally
// filtered by a case-insensitive substring over entry text
func (s *Svc) Full(ctx context.Context, userID, lectureID, search string) (domain.FullView, error) {
	lec, err := s.owned(ctx, userID, lectureID)
	if err != nil {
		return domain.FullView{}, err
	}

	entries, err := s.repo.Entries(ctx, lectureID)
	if err != nil {
		return domain.FullView{}, err
	}
	if search != "" {
		filtered := make([]domain.TranscriptEntry, 0, len(entries))
		for _, e := range entries {
			if pstr.FoldContains(e.Text, search) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []domain.TranscriptEntry{}
	}

	snippets, err := s.repo.SnippetsFor(ctx, lectureID)
	if err != nil {
		return domain.FullView{}, err
	}
	if snippets == nil {
		snippets = []domain.CodeSnippet{}
	}

	return domain.FullView{
		Lecture: domain.LectureHeader{
			ID:        lec.ID,
			Title:     lec.Title,
			Subject:   lec.Subject,
			StartTime: lec.StartTime.UTC().Format(time.RFC3339),
		},
		Transcript: entries,
		Snippets:   snippets,
	}, nil
}

// truncateCode caps snippet code without splitting a multi-byte rune
func truncateCode(code string) string {
	if len(code) <= domain.MaxSnippetLen {
		return code
	}
	cut := domain.MaxSnippetLen
	for cut > 0 && !utf8.RuneStart(code[cut]) {
		cut--
	}
	return code[:cut]
}

func (s *Svc) owned(ctx context.Context, userID, lectureID string) (repo.LectureRow, error) {
	if !ident.IsID(lectureID) {
		return repo.LectureRow{}, perr.Validation([]string{"Invalid lecture ID"})
	}
	lec, err := s.repo.Lecture(ctx, lectureID)
	if err != nil {
		return repo.LectureRow{}, err
	}
	if lec.UserID != userID {
		return repo.LectureRow{}, perr.Forbiddenf("Not authorized to access this lecture")
	}
	return lec, nil
}
