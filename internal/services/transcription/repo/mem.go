package repo

import (
	"context"
	"fmt"
	"sort"

	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/store/mem"
	lecdom "codespeak/internal/services/lectures/domain"
	"codespeak/internal/services/transcription/domain"
)

// Mem implements Repo on the shared in-memory document store
// entries are keyed by their zero-padded sequence so collection scan
// order is transcript order
type Mem struct {
	db *mem.DB
}

// NewMem creates the memory repo
func NewMem(db *mem.DB) *Mem {
	if db == nil {
		panic("transcription.repo requires a non nil mem.DB")
	}
	return &Mem{db: db}
}

func entryKey(seq int64) string { return fmt.Sprintf("%020d", seq) }

func (r *Mem) Lecture(_ context.Context, id string) (LectureRow, error) {
	var row LectureRow
	found := false
	_ = r.db.View(func(tx *mem.Tx) error {
		if doc, ok := tx.Get("lectures", id); ok {
			l := doc.(lecdom.Lecture)
			row = LectureRow{ID: l.ID, UserID: l.UserID, Title: l.Title, Subject: l.Subject, StartTime: l.StartTime}
			found = true
		}
		return nil
	})
	if !found {
		return LectureRow{}, perr.NotFoundf("Lecture not found")
	}
	return row, nil
}

func (r *Mem) Persist(_ context.Context, entry domain.TranscriptEntry, snippet *domain.CodeSnippet) error {
	return r.db.Update(func(tx *mem.Tx) error {
		entry.Seq = tx.NextSeq("transcript_entries")
		tx.Put("transcript_entries", entryKey(entry.Seq), entry)
		if snippet != nil {
			tx.Put("code_snippets", snippet.ID, *snippet)
		}
		return nil
	})
}

func (r *Mem) Tail(ctx context.Context, lectureID string, n int) ([]domain.TranscriptEntry, error) {
	all, err := r.Entries(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func (r *Mem) Entries(_ context.Context, lectureID string) ([]domain.TranscriptEntry, error) {
	var out []domain.TranscriptEntry
	_ = r.db.View(func(tx *mem.Tx) error {
		tx.Scan("transcript_entries", func(_ string, doc any) bool {
			e := doc.(domain.TranscriptEntry)
			if e.LectureID == lectureID {
				out = append(out, e)
			}
			return true
		})
		return nil
	})
	return out, nil
}

func (r *Mem) SnippetsFor(_ context.Context, lectureID string) ([]domain.CodeSnippet, error) {
	var out []domain.CodeSnippet
	_ = r.db.View(func(tx *mem.Tx) error {
		tx.Scan("code_snippets", func(_ string, doc any) bool {
			s := doc.(domain.CodeSnippet)
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
