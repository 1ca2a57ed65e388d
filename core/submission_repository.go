package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Submission statuses. A row moves pending -> processing -> selesai | gagal and may
// fall back to pending while retries remain.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "selesai"
	StatusFailed     = "gagal"
)

// Submission is a resident's letter request.
type Submission struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	JenisSurat   string    `json:"jenisSurat"`
	Keperluan    string    `json:"keperluan"`
	Status       string    `json:"status"`
	NomorSurat   *string   `json:"nomorSurat"`
	RetryCount   int       `json:"retryCount"`
	ErrorMessage *string   `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SubmissionRepository defines persistence operations needed by worker/API.
type SubmissionRepository interface {
	Create(ctx context.Context, userID int64, jenisSurat, keperluan string) (*Submission, error)
	Get(ctx context.Context, id int64) (*Submission, error)
	// List pages through submissions, restricted to userID when it is non-nil.
	List(ctx context.Context, userID *int64, page, perPage int) ([]Submission, int, error)
	Delete(ctx context.Context, id int64) error
	AcquirePending(ctx context.Context, id int64) (*Submission, error)
	MarkStatus(ctx context.Context, id int64, status string) error
	IncrementRetry(ctx context.Context, id int64) (int, error)
	Complete(ctx context.Context, id int64, nomorSurat string) error
	Fail(ctx context.Context, id int64, message string) error
	NextSequence(ctx context.Context, kode string, year int) (int, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// PgSubmissionRepository expects the submissions and letter_sequences tables.
type PgSubmissionRepository struct {
	db *pgxpool.Pool
}

func NewPgSubmissionRepository(db *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{db: db}
}

// ErrSubmissionNotPending is returned when another worker already took the row or it
// reached a final state.
var ErrSubmissionNotPending = errors.New("submission not pending")

const submissionColumns = `id, user_id, jenis_surat, keperluan, status, nomor_surat, retry_count, error_message, created_at, updated_at`

func scanSubmission(row pgx.Row) (*Submission, error) {
	var s Submission
	if err := row.Scan(&s.ID, &s.UserID, &s.JenisSurat, &s.Keperluan, &s.Status, &s.NomorSurat, &s.RetryCount, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgSubmissionRepository) Create(ctx context.Context, userID int64, jenisSurat, keperluan string) (*Submission, error) {
	const q = `INSERT INTO submissions (user_id, jenis_surat, keperluan, status)
VALUES ($1,$2,$3,'pending') RETURNING ` + submissionColumns
	s, err := scanSubmission(r.db.QueryRow(ctx, q, userID, jenisSurat, keperluan))
	if err != nil {
		return nil, MapStoreError(err)
	}
	return s, nil
}

func (r *PgSubmissionRepository) Get(ctx context.Context, id int64) (*Submission, error) {
	s, err := scanSubmission(r.db.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id))
	if err != nil {
		return nil, MapStoreError(err)
	}
	return s, nil
}

func (r *PgSubmissionRepository) List(ctx context.Context, userID *int64, page, perPage int) ([]Submission, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE ($1::bigint IS NULL OR user_id = $1)`, userID).Scan(&total); err != nil {
		return nil, 0, MapStoreError(err)
	}
	rows, err := r.db.Query(ctx, `
SELECT `+submissionColumns+`
FROM submissions
WHERE ($1::bigint IS NULL OR user_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, MapStoreError(err)
	}
	defer rows.Close()
	items := make([]Submission, 0, perPage)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, MapStoreError(err)
		}
		items = append(items, *s)
	}
	return items, total, MapStoreError(rows.Err())
}

func (r *PgSubmissionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM submissions WHERE id=$1`, id)
	return MapStoreError(err)
}

// AcquirePending locks a pending submission and transitions it to processing atomically.
func (r *PgSubmissionRepository) AcquirePending(ctx context.Context, id int64) (*Submission, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	s, err := scanSubmission(tx.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, MapStoreError(err)
	}
	if s.Status != StatusPending {
		return nil, ErrSubmissionNotPending
	}
	if _, err := tx.Exec(ctx, `UPDATE submissions SET status='processing', updated_at=NOW() WHERE id=$1`, id); err != nil {
		return nil, MapStoreError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, MapStoreError(err)
	}
	s.Status = StatusProcessing
	return s, nil
}

// MarkStatus moves a row that has not reached selesai or gagal. Final rows answer
// ErrSubmissionNotPending.
func (r *PgSubmissionRepository) MarkStatus(ctx context.Context, id int64, status string) error {
	if status == "" {
		return errors.New("status is empty")
	}
	ct, err := r.db.Exec(ctx, `UPDATE submissions SET status=$1, updated_at=NOW()
WHERE id=$2 AND status IN ('pending','processing')`, status, id)
	if err != nil {
		return MapStoreError(err)
	}
	if ct.RowsAffected() == 0 {
		return r.missedTransition(ctx, id)
	}
	return nil
}

// missedTransition explains an update that matched no row.
func (r *PgSubmissionRepository) missedTransition(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM submissions WHERE id=$1)`, id).Scan(&exists); err != nil {
		return MapStoreError(err)
	}
	if !exists {
		return notFoundError("submission")
	}
	return ErrSubmissionNotPending
}

// IncrementRetry increments retry_count of an open row and returns the latest value.
func (r *PgSubmissionRepository) IncrementRetry(ctx context.Context, id int64) (int, error) {
	const q = `UPDATE submissions SET retry_count = retry_count + 1, updated_at=NOW()
WHERE id=$1 AND status IN ('pending','processing') RETURNING retry_count`
	var count int
	if err := r.db.QueryRow(ctx, q, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.missedTransition(ctx, id)
		}
		return 0, MapStoreError(err)
	}
	return count, nil
}

// Complete numbers a row that is still processing. The first completion wins; a late
// worker gets ErrSubmissionNotPending and the letter keeps its number.
func (r *PgSubmissionRepository) Complete(ctx context.Context, id int64, nomorSurat string) error {
	const q = `UPDATE submissions SET status='selesai', nomor_surat=$1, error_message=NULL, updated_at=NOW()
WHERE id=$2 AND status='processing'`
	ct, err := r.db.Exec(ctx, q, nomorSurat, id)
	if err != nil {
		return MapStoreError(err)
	}
	if ct.RowsAffected() == 0 {
		return r.missedTransition(ctx, id)
	}
	return nil
}

func (r *PgSubmissionRepository) Fail(ctx context.Context, id int64, message string) error {
	ct, err := r.db.Exec(ctx, `UPDATE submissions SET status='gagal', error_message=$1, updated_at=NOW()
WHERE id=$2 AND status IN ('pending','processing')`, message, id)
	if err != nil {
		return MapStoreError(err)
	}
	if ct.RowsAffected() == 0 {
		return r.missedTransition(ctx, id)
	}
	return nil
}

// NextSequence bumps and returns the letter counter for kode in year. The first call
// for a pair returns 1.
func (r *PgSubmissionRepository) NextSequence(ctx context.Context, kode string, year int) (int, error) {
	const q = `
INSERT INTO letter_sequences (kode, tahun, last_value) VALUES ($1,$2,1)
ON CONFLICT (kode, tahun) DO UPDATE SET last_value = letter_sequences.last_value + 1
RETURNING last_value`
	var n int
	if err := r.db.QueryRow(ctx, q, kode, year).Scan(&n); err != nil {
		return 0, MapStoreError(err)
	}
	return n, nil
}

func (r *PgSubmissionRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()
	out := map[string]int64{
		StatusPending:    0,
		StatusProcessing: 0,
		StatusDone:       0,
		StatusFailed:     0,
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, MapStoreError(err)
		}
		out[status] = n
	}
	return out, MapStoreError(rows.Err())
}
