// Package repo provides storage access for lecture sessions
// two implementations exist behind one interface: postgres for durable
// deployments and the shared in-memory document store for dev and tests
package repo

import (
	"context"
	"time"

	"codespeak/internal/modkit/repokit"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/services/lectures/domain"
	tdom "codespeak/internal/services/transcription/domain"
)

// Repo defines the repository contract for lectures
type Repo interface {
	Create(ctx context.Context, l domain.Lecture) error
	Get(ctx context.Context, id string) (domain.Lecture, error)
	SetEnd(ctx context.Context, id string, end time.Time, duration int) error
	History(ctx context.Context, userID string, offset, limit int) ([]domain.Lecture, int, error)
	Search(ctx context.Context, userID, query string, limit int) ([]domain.Lecture, error)

	SnippetsFor(ctx context.Context, lectureID string) ([]tdom.CodeSnippet, error)
	UpdateSnippet(ctx context.Context, id, code string, corrected bool) error

	// DeleteCascade removes snippets, transcript entries, then the
	// lecture itself as one atomic unit
	DeleteCascade(ctx context.Context, id string) error
}

// PG implements Repo on postgres
type PG struct {
	db repokit.TxRunner
}

// NewPG creates the postgres repo over a TxRunner
// the tx surface is required because cascade delete spans tables
func NewPG(db repokit.TxRunner) *PG {
	if db == nil {
		panic("lectures.repo requires a non nil TxRunner")
	}
	return &PG{db: db}
}

const lectureCols = `id, user_id, title, subject, instructor, tags, summary, is_public, start_time, end_time, duration`

func scanLecture(row repokit.Row) (domain.Lecture, error) {
	var l domain.Lecture
	var end *time.Time
	err := row.Scan(
		&l.ID, &l.UserID, &l.Title, &l.Subject, &l.Instructor,
		&l.Tags, &l.Summary, &l.IsPublic, &l.StartTime, &end, &l.Duration,
	)
	if err != nil {
		return domain.Lecture{}, err
	}
	l.EndTime = end
	return l, nil
}

func (r *PG) Create(ctx context.Context, l domain.Lecture) error {
	const sql = `
insert into lectures (` + lectureCols + `)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.Exec(ctx, sql,
		l.ID, l.UserID, l.Title, l.Subject, l.Instructor,
		l.Tags, l.Summary, l.IsPublic, l.StartTime, l.EndTime, l.Duration,
	)
	if err != nil {
		return perr.FromDB(err, "lecture insert failed")
	}
	return nil
}

func (r *PG) Get(ctx context.Context, id string) (domain.Lecture, error) {
	l, err := scanLecture(r.db.QueryRow(ctx, `select `+lectureCols+` from lectures where id = $1`, id))
	if err != nil {
		if perr.IsNoRows(err) {
			return domain.Lecture{}, perr.NotFoundf("Lecture not found")
		}
		return domain.Lecture{}, perr.FromDB(err, "lecture select failed")
	}
	return l, nil
}

func (r *PG) SetEnd(ctx context.Context, id string, end time.Time, duration int) error {
	tag, err := r.db.Exec(ctx,
		`update lectures set end_time = $2, duration = $3 where id = $1`,
		id, end, duration,
	)
	if err != nil {
		return perr.FromDB(err, "lecture end update failed")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("Lecture not found")
	}
	return nil
}

func (r *PG) History(ctx context.Context, userID string, offset, limit int) ([]domain.Lecture, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`select count(*) from lectures where user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, perr.FromDB(err, "lecture count failed")
	}

	rows, err := r.db.Query(ctx, `
select `+lectureCols+`
from lectures
where user_id = $1
order by start_time desc
offset $2 limit $3
`, userID, offset, limit)
	if err != nil {
		return nil, 0, perr.FromDB(err, "lecture history failed")
	}
	defer rows.Close()

	var out []domain.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, 0, perr.FromDB(err, "lecture history scan failed")
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PG) Search(ctx context.Context, userID, query string, limit int) ([]domain.Lecture, error) {
	rows, err := r.db.Query(ctx, `
select `+lectureCols+`
from lectures
where user_id = $1
  and (title ilike '%' || $2 || '%'
       or exists (select 1 from unnest(tags) tag where tag ilike '%' || $2 || '%'))
order by start_time desc
limit $3
`, userID, query, limit)
	if err != nil {
		return nil, perr.FromDB(err, "lecture search failed")
	}
	defer rows.Close()

	var out []domain.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, perr.FromDB(err, "lecture search scan failed")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PG) SnippetsFor(ctx context.Context, lectureID string) ([]tdom.CodeSnippet, error) {
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

	var out []tdom.CodeSnippet
	for rows.Next() {
		var s tdom.CodeSnippet
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

func (r *PG) UpdateSnippet(ctx context.Context, id, code string, corrected bool) error {
	tag, err := r.db.Exec(ctx,
		`update code_snippets set code = $2, is_corrected = $3 where id = $1`,
		id, code, corrected,
	)
	if err != nil {
		return perr.FromDB(err, "snippet update failed")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("Snippet not found")
	}
	return nil
}

func (r *PG) DeleteCascade(ctx context.Context, id string) error {
	err := r.db.Tx(ctx, func(q repokit.Queryer) error {
		if _, err := q.Exec(ctx, `delete from code_snippets where lecture_id = $1`, id); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `delete from transcript_entries where lecture_id = $1`, id); err != nil {
			return err
		}
		tag, err := q.Exec(ctx, `delete from lectures where id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return perr.NotFoundf("Lecture not found")
		}
		return nil
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return err
		}
		return perr.FromDB(err, "lecture cascade delete failed")
	}
	return nil
}
