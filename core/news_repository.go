package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// News is a village news article (berita).
type News struct {
	ID         int64     `json:"id"`
	Judul      string    `json:"judul"`
	Isi        string    `json:"isi"`
	GambarURL  string    `json:"gambarUrl"`
	KategoriID *int64    `json:"kategoriId"`
	PenulisID  int64     `json:"penulisId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type NewsInput struct {
	Judul      string
	Isi        string
	GambarURL  string
	KategoriID *int64
}

type NewsRepository interface {
	List(ctx context.Context, kategoriID *int64, page, perPage int) ([]News, int, error)
	Get(ctx context.Context, id int64) (*News, error)
	Create(ctx context.Context, penulisID int64, in NewsInput) (*News, error)
	Update(ctx context.Context, id int64, in NewsInput) (*News, error)
	Delete(ctx context.Context, id int64) error
}

type PgNewsRepository struct {
	db *pgxpool.Pool
}

func NewPgNewsRepository(db *pgxpool.Pool) *PgNewsRepository {
	return &PgNewsRepository{db: db}
}

const newsColumns = `id, judul, isi, gambar_url, kategori_id, penulis_id, created_at, updated_at`

func (r *PgNewsRepository) List(ctx context.Context, kategoriID *int64, page, perPage int) ([]News, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM berita WHERE ($1::bigint IS NULL OR kategori_id = $1)`, kategoriID).Scan(&total); err != nil {
		return nil, 0, MapStoreError(err)
	}
	rows, err := r.db.Query(ctx, `
SELECT `+newsColumns+`
FROM berita
WHERE ($1::bigint IS NULL OR kategori_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, kategoriID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, MapStoreError(err)
	}
	defer rows.Close()
	items := make([]News, 0, perPage)
	for rows.Next() {
		var n News
		if err := rows.Scan(&n.ID, &n.Judul, &n.Isi, &n.GambarURL, &n.KategoriID, &n.PenulisID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, MapStoreError(err)
		}
		items = append(items, n)
	}
	return items, total, MapStoreError(rows.Err())
}

func (r *PgNewsRepository) Get(ctx context.Context, id int64) (*News, error) {
	var n News
	err := r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM berita WHERE id=$1`, id).
		Scan(&n.ID, &n.Judul, &n.Isi, &n.GambarURL, &n.KategoriID, &n.PenulisID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return &n, nil
}

func (r *PgNewsRepository) Create(ctx context.Context, penulisID int64, in NewsInput) (*News, error) {
	n := News{
		Judul:      strings.TrimSpace(in.Judul),
		Isi:        strings.TrimSpace(in.Isi),
		GambarURL:  strings.TrimSpace(in.GambarURL),
		KategoriID: in.KategoriID,
		PenulisID:  penulisID,
	}
	const q = `
INSERT INTO berita (judul, isi, gambar_url, kategori_id, penulis_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at, updated_at`
	if err := r.db.QueryRow(ctx, q, n.Judul, n.Isi, n.GambarURL, n.KategoriID, n.PenulisID).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &n, nil
}

func (r *PgNewsRepository) Update(ctx context.Context, id int64, in NewsInput) (*News, error) {
	const q = `
UPDATE berita SET judul=$1, isi=$2, gambar_url=$3, kategori_id=$4, updated_at=now()
WHERE id=$5
RETURNING ` + newsColumns
	var n News
	err := r.db.QueryRow(ctx, q, strings.TrimSpace(in.Judul), strings.TrimSpace(in.Isi), strings.TrimSpace(in.GambarURL), in.KategoriID, id).
		Scan(&n.ID, &n.Judul, &n.Isi, &n.GambarURL, &n.KategoriID, &n.PenulisID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return &n, nil
}

func (r *PgNewsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM berita WHERE id=$1`, id)
	if err != nil {
		return MapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("news")
	}
	return nil
}
