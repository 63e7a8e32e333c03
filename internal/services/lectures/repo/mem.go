package repo

import (
	"context"
	"sort"
	"time"

	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/store/mem"
	pstr "codespeak/internal/platform/strings"
	"codespeak/internal/services/lectures/domain"
	tdom "codespeak/internal/services/transcription/domain"
)

// Mem implements Repo on the shared in-memory document store
type Mem struct {
	db *mem.DB
}

// NewMem creates the memory repo
func NewMem(db *mem.DB) *Mem {
	if db == nil {
		panic("lectures.repo requires a non nil mem.DB")
	}
	return &Mem{db: db}
}

func (r *Mem) Create(_ context.Context, l domain.Lecture) error {
	return r.db.Update(func(tx *mem.Tx) error {
		tx.Put("lectures", l.ID, l)
		return nil
	})
}

func (r *Mem) Get(_ context.Context, id string) (domain.Lecture, error) {
	var l domain.Lecture
	found := false
	_ = r.db.View(func(tx *mem.Tx) error {
		if doc, ok := tx.Get("lectures", id); ok {
			l = doc.(domain.Lecture)
			found = true
		}
		return nil
	})
	if !found {
		return domain.Lecture{}, perr.NotFoundf("Lecture not found")
	}
	return l, nil
}

func (r *Mem) SetEnd(_ context.Context, id string, end time.Time, duration int) error {
	return r.db.Update(func(tx *mem.Tx) error {
		doc, ok := tx.Get("lectures", id)
		if !ok {
			return perr.NotFoundf("Lecture not found")
		}
		l := doc.(domain.Lecture)
		l.EndTime = &end
		l.Duration = duration
		tx.Put("lectures", id, l)
		return nil
	})
}

func (r *Mem) History(_ context.Context, userID string, offset, limit int) ([]domain.Lecture, int, error) {
	all := r.ownedBy(userID)
	total := len(all)
	if offset >= len(all) {
		return []domain.Lecture{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *Mem) Search(_ context.Context, userID, query string, limit int) ([]domain.Lecture, error) {
	var out []domain.Lecture
	for _, l := range r.ownedBy(userID) {
		if len(out) >= limit {
			break
		}
		if matches(l, query) {
			out = append(out, l)
		}
	}
	return out, nil
}

func matches(l domain.Lecture, query string) bool {
	if pstr.FoldContains(l.Title, query) {
		return true
	}
	for _, tag := range l.Tags {
		if pstr.FoldContains(tag, query) {
			return true
		}
	}
	return false
}

// ownedBy returns the user's lectures sorted by start time descending
func (r *Mem) ownedBy(userID string) []domain.Lecture {
	var all []domain.Lecture
	_ = r.db.View(func(tx *mem.Tx) error {
		tx.Scan("lectures", func(_ string, doc any) bool {
			l := doc.(domain.Lecture)
			if l.UserID == userID {
				all = append(all, l)
			}
			return true
		})
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartTime.Equal(all[j].StartTime) {
			return all[i].StartTime.After(all[j].StartTime)
		}
		return all[i].ID > all[j].ID
	})
	return all
}

func (r *Mem) SnippetsFor(_ context.Context, lectureID string) ([]tdom.CodeSnippet, error) {
	var out []tdom.CodeSnippet
	_ = r.db.View(func(tx *mem.Tx) error {
		tx.Scan("code_snippets", func(_ string, doc any) bool {
			s := doc.(tdom.CodeSnippet)
			if s.LectureID == lectureID {
				out = append(out, s)
			}
			return true
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Mem) UpdateSnippet(_ context.Context, id, code string, corrected bool) error {
	return r.db.Update(func(tx *mem.Tx) error {
		doc, ok := tx.Get("code_snippets", id)
		if !ok {
			return perr.NotFoundf("Snippet not found")
		}
		s := doc.(tdom.CodeSnippet)
		s.Code = code
		s.IsCorrected = corrected
		tx.Put("code_snippets", id, s)
		return nil
	})
}

func (r *Mem) DeleteCascade(_ context.Context, id string) error {
	return r.db.Update(func(tx *mem.Tx) error {
		if _, ok := tx.Get("lectures", id); !ok {
			return perr.NotFoundf("Lecture not found")
		}
		tx.DeleteWhere("code_snippets", func(_ string, doc any) bool {
			return doc.(tdom.CodeSnippet).LectureID == id
		})
		tx.DeleteWhere("transcript_entries", func(_ string, doc any) bool {
			return doc.(tdom.TranscriptEntry).LectureID == id
		})
		tx.Delete("lectures", id)
		return nil
	})
}
