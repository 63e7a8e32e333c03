package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"codespeak/internal/adapters/mlsvc"
	"codespeak/internal/core/ident"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/store/mem"
	"codespeak/internal/services/lectures/domain"
	"codespeak/internal/services/lectures/repo"
	"codespeak/internal/services/lectures/service"
	tdom "codespeak/internal/services/transcription/domain"
)

type fakeCorrector struct {
	batch func(snippets []string) mlsvc.BatchResult
}

func (f fakeCorrector) BatchCorrect(_ context.Context, snippets []string) mlsvc.BatchResult {
	return f.batch(snippets)
}

type fixture struct {
	db     *mem.DB
	repo   *repo.Mem
	svc    *service.Svc
	userID string
}

func newFixture(t *testing.T, corrector service.BatchCorrector) *fixture {
	t.Helper()
	db := mem.New()
	r := repo.NewMem(db)
	return &fixture{
		db:     db,
		repo:   r,
		svc:    service.New(r, corrector),
		userID: ident.New(),
	}
}

func (f *fixture) start(t *testing.T, title string) string {
	t.Helper()
	out, err := f.svc.Start(context.Background(), f.userID, domain.StartInput{
		Title:   title,
		Subject: "Algorithms",
	})
	if err != nil {
		t.Fatalf("Start %q: %v", title, err)
	}
	return out.LectureID
}

func (f *fixture) seedSnippet(t *testing.T, lectureID, code string, ts float64) string {
	t.Helper()
	id := ident.New()
	if err := f.db.Update(func(tx *mem.Tx) error {
		tx.Put("code_snippets", id, tdom.CodeSnippet{
			ID:        id,
			LectureID: lectureID,
			Code:      code,
			Language:  "python",
			Timestamp: ts,
		})
		return nil
	}); err != nil {
		t.Fatalf("seed snippet: %v", err)
	}
	return id
}

func (f *fixture) seedEntry(t *testing.T, lectureID, text string) {
	t.Helper()
	if err := f.db.Update(func(tx *mem.Tx) error {
		seq := tx.NextSeq("transcript_entries")
		tx.Put("transcript_entries", fmt.Sprintf("%020d", seq), tdom.TranscriptEntry{
			Seq:       seq,
			LectureID: lectureID,
			Text:      text,
		})
		return nil
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}

func TestStart_ValidationAndDefaults(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Start(context.Background(), f.userID, domain.StartInput{
		Title:   "  ",
		Subject: "Basket Weaving",
	})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want Validation, got %v", err)
	}
	e, _ := perr.As(err)
	if e == nil || len(e.Details()) != 2 {
		t.Fatalf("want both violations reported, got %v", err)
	}
	if e.Details()[0] != "Title is required" {
		t.Fatalf("detail 0 = %q", e.Details()[0])
	}
	if !strings.HasPrefix(e.Details()[1], "Subject must be one of:") {
		t.Fatalf("detail 1 = %q", e.Details()[1])
	}

	_, err = f.svc.Start(context.Background(), f.userID, domain.StartInput{
		Title:   strings.Repeat("t", domain.MaxTitleLen+1),
		Subject: "Algorithms",
	})
	e, _ = perr.As(err)
	if e == nil || len(e.Details()) != 1 || !strings.Contains(e.Details()[0], "200") {
		t.Fatalf("overlong title detail wrong: %v", err)
	}

	id := f.start(t, "Graphs 101")
	if !ident.IsID(id) {
		t.Fatalf("lecture id not a document id: %q", id)
	}
	l, err := f.repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.Instructor != domain.DefaultInstructor {
		t.Fatalf("instructor default wrong: %q", l.Instructor)
	}
	if l.EndTime != nil || l.Duration != 0 {
		t.Fatalf("new lecture must be open: %+v", l)
	}
}

func TestEnd_DurationAndDoubleEnd(t *testing.T) {
	f := newFixture(t, nil)
	id := f.start(t, "Heaps")

	// rewind the start so the duration is observable
	if err := f.db.Update(func(tx *mem.Tx) error {
		doc, _ := tx.Get("lectures", id)
		l := doc.(domain.Lecture)
		l.StartTime = time.Now().Add(-90 * time.Second)
		tx.Put("lectures", id, l)
		return nil
	}); err != nil {
		t.Fatalf("rewind: %v", err)
	}

	out, err := f.svc.End(context.Background(), f.userID, id)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if out.Lecture.ID != id || out.Lecture.Title != "Heaps" {
		t.Fatalf("ended lecture summary wrong: %+v", out.Lecture)
	}
	if out.Lecture.Duration < 89 || out.Lecture.Duration > 91 {
		t.Fatalf("duration not in whole seconds of elapsed time: %d", out.Lecture.Duration)
	}

	if _, err := f.svc.End(context.Background(), f.userID, id); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second end must conflict, got %v", err)
	}
	if _, err := f.svc.End(context.Background(), ident.New(), id); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("stranger end must be forbidden, got %v", err)
	}
}

func TestHistory_PaginationClamps(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 25; i++ {
		f.start(t, fmt.Sprintf("Lecture %02d", i))
	}
	// someone else's lecture never shows up
	f.startAs(t, ident.New(), "Not yours")

	views, total, err := f.svc.History(context.Background(), f.userID, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 25 {
		t.Fatalf("total = %d, want 25", total)
	}
	if len(views) != 20 {
		t.Fatalf("default limit = %d, want 20", len(views))
	}

	page2, total, err := f.svc.History(context.Background(), f.userID, 2, 20)
	if err != nil {
		t.Fatalf("History page 2: %v", err)
	}
	if total != 25 || len(page2) != 5 {
		t.Fatalf("page 2: total=%d len=%d", total, len(page2))
	}

	huge, _, err := f.svc.History(context.Background(), f.userID, 1, 1000)
	if err != nil {
		t.Fatalf("History huge limit: %v", err)
	}
	if len(huge) != 25 {
		t.Fatalf("limit clamp failed: %d", len(huge))
	}

	empty, total, err := f.svc.History(context.Background(), f.userID, 99, 20)
	if err != nil || total != 25 || len(empty) != 0 {
		t.Fatalf("past-the-end page: len=%d total=%d err=%v", len(empty), total, err)
	}
}

// startAs creates a lecture for another account in the same store
func (f *fixture) startAs(t *testing.T, userID, title string) string {
	t.Helper()
	out, err := f.svc.Start(context.Background(), userID, domain.StartInput{
		Title:   title,
		Subject: "Other",
	})
	if err != nil {
		t.Fatalf("Start as %s: %v", userID, err)
	}
	return out.LectureID
}

func TestSearch_TitleAndTags(t *testing.T) {
	f := newFixture(t, nil)
	id := f.start(t, "Dynamic Programming")
	f.start(t, "Linked Lists")

	// tags are matched too
	if err := f.db.Update(func(tx *mem.Tx) error {
		doc, _ := tx.Get("lectures", id)
		l := doc.(domain.Lecture)
		l.Tags = []string{"memoization", "tables"}
		tx.Put("lectures", id, l)
		return nil
	}); err != nil {
		t.Fatalf("tag: %v", err)
	}

	views, err := f.svc.Search(context.Background(), f.userID, "dynamic")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(views) != 1 || views[0].Title != "Dynamic Programming" {
		t.Fatalf("title search wrong: %+v", views)
	}

	views, err = f.svc.Search(context.Background(), f.userID, "MEMO")
	if err != nil || len(views) != 1 {
		t.Fatalf("tag search wrong: %v %v", views, err)
	}

	// a blank query is a validation failure, so the boundary answers 400
	_, err = f.svc.Search(context.Background(), f.userID, "   ")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("blank query must be rejected, got %v", err)
	}
	if got := perr.HTTPStatus(err); got != 400 {
		t.Fatalf("blank query status = %d, want 400", got)
	}
	e, _ := perr.As(err)
	if e == nil || e.ToWire().Message != "Search query is required" {
		t.Fatalf("blank query message wrong: %v", err)
	}
}

func TestGet_ResolvesSnippets(t *testing.T) {
	f := newFixture(t, nil)
	id := f.start(t, "Recursion")
	f.seedSnippet(t, id, "def f(n): return f(n-1)", 10)
	f.seedSnippet(t, id, "def g(): pass", 4)

	det, err := f.svc.Get(context.Background(), f.userID, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if det.ID != id || len(det.Snippets) != 2 {
		t.Fatalf("details wrong: %+v", det)
	}
	if det.Snippets[0].Timestamp != 4 {
		t.Fatalf("snippets not ordered by timestamp: %+v", det.Snippets)
	}

	if _, err := f.svc.Get(context.Background(), f.userID, "zzz"); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("malformed id must fail validation, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), ident.New(), id); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("stranger get must be forbidden, got %v", err)
	}
}

func TestDelete_CascadesEverything(t *testing.T) {
	f := newFixture(t, nil)
	id := f.start(t, "Doomed")
	keep := f.start(t, "Kept")

	f.seedSnippet(t, id, "x = 1", 1)
	f.seedSnippet(t, id, "y = 2", 2)
	f.seedEntry(t, id, "first")
	f.seedEntry(t, id, "second")
	f.seedSnippet(t, keep, "z = 3", 1)
	f.seedEntry(t, keep, "stays")

	if err := f.svc.Delete(context.Background(), f.userID, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := f.repo.Get(context.Background(), id); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("lecture survived delete: %v", err)
	}
	snips, _ := f.repo.SnippetsFor(context.Background(), id)
	if len(snips) != 0 {
		t.Fatalf("cascade left %d snippets behind", len(snips))
	}

	// the sibling lecture is untouched
	kept, _ := f.repo.SnippetsFor(context.Background(), keep)
	if len(kept) != 1 {
		t.Fatalf("cascade crossed lectures: %d", len(kept))
	}
	remaining := 0
	_ = f.db.View(func(tx *mem.Tx) error {
		tx.Scan("transcript_entries", func(_ string, doc any) bool {
			remaining++
			return true
		})
		return nil
	})
	if remaining != 1 {
		t.Fatalf("want only the kept entry, got %d", remaining)
	}

	if err := f.svc.Delete(context.Background(), f.userID, id); !perr.IsCode(err, perr.ErrorCodeValidation) && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestRecorrect_AppliesBatchCorrections(t *testing.T) {
	corrector := fakeCorrector{batch: func(snippets []string) mlsvc.BatchResult {
		out := mlsvc.BatchResult{}
		for i, code := range snippets {
			if strings.Contains(code, "ranj") {
				out.Corrections = append(out.Corrections, mlsvc.Correction{
					Index:         i,
					CorrectedCode: strings.ReplaceAll(code, "ranj", "range"),
					Confidence:    0.9,
				})
			}
		}
		// an out-of-range index must be ignored, not crash
		out.Corrections = append(out.Corrections, mlsvc.Correction{Index: 99, CorrectedCode: "nope"})
		return out
	}}
	f := newFixture(t, corrector)
	id := f.start(t, "Loops")

	bad := f.seedSnippet(t, id, "for i in ranj(10):", 1)
	f.seedSnippet(t, id, "print(i)", 2)

	out, err := f.svc.Recorrect(context.Background(), f.userID, id)
	if err != nil {
		t.Fatalf("Recorrect: %v", err)
	}
	if out.Snippets != 2 || out.Corrected != 1 {
		t.Fatalf("counts wrong: %+v", out)
	}

	_ = f.db.View(func(tx *mem.Tx) error {
		doc, _ := tx.Get("code_snippets", bad)
		s := doc.(tdom.CodeSnippet)
		if s.Code != "for i in range(10):" || !s.IsCorrected {
			t.Errorf("correction not applied: %+v", s)
		}
		return nil
	})
}

func TestRecorrect_EmptyAndUnavailable(t *testing.T) {
	f := newFixture(t, fakeCorrector{batch: func([]string) mlsvc.BatchResult { return mlsvc.BatchResult{} }})
	id := f.start(t, "No Code Here")

	out, err := f.svc.Recorrect(context.Background(), f.userID, id)
	if err != nil {
		t.Fatalf("Recorrect: %v", err)
	}
	if out.Message != "No snippets to correct" {
		t.Fatalf("message = %q", out.Message)
	}

	bare := newFixture(t, nil)
	bareID := bare.start(t, "No Corrector")
	if _, err := bare.svc.Recorrect(context.Background(), bare.userID, bareID); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable without a corrector, got %v", err)
	}
}

func TestRecorrect_SkipsFailedChunks(t *testing.T) {
	corrector := fakeCorrector{batch: func(snippets []string) mlsvc.BatchResult {
		return mlsvc.BatchResult{Err: fmt.Errorf("boom")}
	}}
	f := newFixture(t, corrector)
	id := f.start(t, "Flaky")
	f.seedSnippet(t, id, "a = 1", 1)

	out, err := f.svc.Recorrect(context.Background(), f.userID, id)
	if err != nil {
		t.Fatalf("failed chunk must not fail the call: %v", err)
	}
	if out.Corrected != 0 || out.Snippets != 1 {
		t.Fatalf("counts wrong: %+v", out)
	}
}
