// Package repo provides storage access for transcripts and snippets
package repo

import (
	"context"
	"time"

	"codespeak/internal/modkit/repokit"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/services/transcription/domain"
)

// LectureRow is the slim lecture projection the pipeline needs for
// authorization and transcript headers
type LectureRow struct {
	ID        string
	UserID    string
	Title     string
	Subject   string
	StartTime time.Time
}

// Repo defines the repository contract for transcription
type Repo interface {
	// Lecture loads the owning lecture, NotFound when absent
	Lecture(ctx context.Context, id string) (LectureRow, error)

	// Persist appends the entry and, when snippet is non-nil, stores and
	// links it, all as one atomic unit
	Persist(ctx context.Context, entry domain.TranscriptEntry, snippet *domain.CodeSnippet) error

	// Tail returns the last n entries in transcript order
	Tail(ctx context.Context, lectureID string, n int) ([]domain.TranscriptEntry, error)

	// Entries returns the whole transcript in order
	Entries(ctx context.Context, lectureID string) ([]domain.TranscriptEntry, error)

	// SnippetsFor returns the lecture's snippets ordered by timestamp
	SnippetsFor(ctx context.Context, lectureID string) ([]domain.CodeSnippet, error)
}

// PG implements Repo on postgres
type PG struct {
	db repokit.TxRunner
}

// NewPG creates the postgres repo over a TxRunner
func NewPG(db repokit.TxRunner) *PG {
	if db == nil {
		panic("transcription.repo requires a non nil TxRunner")
	}
	return &PG{db: db}
}

func (r *PG) Lecture(ctx context.Context, id string) (LectureRow, error) {
	var row LectureRow
	err := r.db.QueryRow(ctx,
		`select id, user_id, title, subject, start_time from lectures where id = $1`, id,
	).Scan(&row.ID, &row.UserID, &row.Title, &row.Subject, &row.StartTime)
	if err != nil {
		if perr.IsNoRows(err) {
			return LectureRow{}, perr.NotFoundf("Lecture not found")
		}
		return LectureRow{}, perr.FromDB(err, "lecture select failed")
	}
	return row, nil
}

func (r *PG) Persist(ctx context.Context, entry domain.TranscriptEntry, snippet *domain.CodeSnippet) error {
	err := r.db.Tx(ctx, func(q repokit.Queryer) error {
		_, err := q.Exec(ctx, `
insert into transcript_entries (lecture_id, ts, text, is_code, code_language, confidence)
values ($1,$2,$3,$4,$5,$6)
`, entry.LectureID, entry.Timestamp, entry.Text, entry.IsCode, entry.CodeLanguage, entry.Confidence)
		if err != nil {
			return err
		}
		if snippet == nil {
			return nil
		}
		_, err = q.Exec(ctx, `
insert into code_snippets
  (id, lecture_id, code, language, ts, original_transcript, explanation, is_corrected, confidence)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, snippet.ID, snippet.LectureID, snippet.Code, snippet.Language, snippet.Timestamp,
			snippet.OriginalTranscript, snippet.Explanation, snippet.IsCorrected, snippet.Confidence)
		return err
	})
	if err != nil {
		return perr.FromDB(err, "transcript persist failed")
	}
	return nil
}

func (r *PG) Tail(ctx context.Context, lectureID string, n int) ([]domain.TranscriptEntry, error) {
	rows, err := r.db.Query(ctx, `
select seq, lecture_id, ts, text, is_code, code_language, confidence
from (
  select seq, lecture_id, ts, text, is_code, code_language, confidence
  from transcript_entries
  where lecture_id = $1
  order by seq desc
  limit $2
) tail
order by seq
`, lectureID, n)
	if err != nil {
		return nil, perr.FromDB(err, "transcript tail failed")
	}
	return collectEntries(rows)
}

func (r *PG) Entries(ctx context.Context, lectureID string) ([]domain.TranscriptEntry, error) {
	rows, err := r.db.Query(ctx, `
select seq, lecture_id, ts, text, is_code, code_language, confidence
from transcript_entries
where lecture_id = $1
order by seq
`, lectureID)
	if err != nil {
		return nil, perr.FromDB(err, "transcript select failed")
	}
	return collectEntries(rows)
}

func collectEntries(rows repokit.Rows) ([]domain.TranscriptEntry, error) {
	defer rows.Close()
	var out []domain.TranscriptEntry
	for rows.Next() {
		var e domain.TranscriptEntry
		if err := rows.Scan(
			&e.Seq, &e.LectureID, &e.Timestamp, &e.Text, &e.IsCode, &e.CodeLanguage, &e.Confidence,
		); err != nil {
			return nil, perr.FromDB(err, "transcript scan failed")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PG) SnippetsFor(ctx context.Context, lectureID string) ([]domain.CodeSnippet, error) {
	rows, err := r.db.Query(ctx, `
select id, lecture_id, code, language, ts, original_transcript, explanation, is_corrected, confidence
from code_snippets
where lecture_id = $1
order by ts, id
`, lectureID)
	if err != nil {
		return nil, perr.FromDB(err, "snippet select failed")
	}
	defer rows.Close()

	var out []domain.CodeSnippet
	for rows.Next() {
		var s domain.CodeSnippet
		if err := rows.Scan(
			&s.ID, &s.LectureID, &s.Code, &s.Language, &s.Timestamp,
			&s.OriginalTranscript, &s.Explanation, &s.IsCorrected, &s.Confidence,
		); err != nil {
			return nil, perr.FromDB(err, "snippet scan failed")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
