package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Announcement is a village notice (pengumuman).
type Announcement struct {
	ID         int64     `json:"id"`
	Judul      string    `json:"judul"`
	Isi        string    `json:"isi"`
	KategoriID *int64    `json:"kategoriId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type AnnouncementInput struct {
	Judul      string
	Isi        string
	KategoriID *int64
}

type AnnouncementRepository interface {
	List(ctx context.Context, kategoriID *int64, page, perPage int) ([]Announcement, int, error)
	Get(ctx context.Context, id int64) (*Announcement, error)
	Create(ctx context.Context, in AnnouncementInput) (*Announcement, error)
	Update(ctx context.Context, id int64, in AnnouncementInput) (*Announcement, error)
	Delete(ctx context.Context, id int64) error
}

type PgAnnouncementRepository struct {
	db *pgxpool.Pool
}

func NewPgAnnouncementRepository(db *pgxpool.Pool) *PgAnnouncementRepository {
	return &PgAnnouncementRepository{db: db}
}

// List returns newest-first announcements, optionally restricted to one category.
func (r *PgAnnouncementRepository) List(ctx context.Context, kategoriID *int64, page, perPage int) ([]Announcement, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pengumuman WHERE ($1::bigint IS NULL OR kategori_id = $1)`, kategoriID).Scan(&total); err != nil {
		return nil, 0, MapStoreError(err)
	}
	rows, err := r.db.Query(ctx, `
SELECT id, judul, isi, kategori_id, created_at, updated_at
FROM pengumuman
WHERE ($1::bigint IS NULL OR kategori_id = $1)
ORDER BY updated_at DESC, id DESC
LIMIT $2 OFFSET $3
`, kategoriID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, MapStoreError(err)
	}
	defer rows.Close()
	items := make([]Announcement, 0, perPage)
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Judul, &a.Isi, &a.KategoriID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, MapStoreError(err)
		}
		items = append(items, a)
	}
	return items, total, MapStoreError(rows.Err())
}

func (r *PgAnnouncementRepository) Get(ctx context.Context, id int64) (*Announcement, error) {
	const q = `SELECT id, judul, isi, kategori_id, created_at, updated_at FROM pengumuman WHERE id=$1`
	var a Announcement
	if err := r.db.QueryRow(ctx, q, id).Scan(&a.ID, &a.Judul, &a.Isi, &a.KategoriID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &a, nil
}

func (r *PgAnnouncementRepository) Create(ctx context.Context, in AnnouncementInput) (*Announcement, error) {
	a := Announcement{Judul: strings.TrimSpace(in.Judul), Isi: strings.TrimSpace(in.Isi), KategoriID: in.KategoriID}
	const q = `INSERT INTO pengumuman (judul, isi, kategori_id) VALUES ($1,$2,$3) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRow(ctx, q, a.Judul, a.Isi, a.KategoriID).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &a, nil
}

func (r *PgAnnouncementRepository) Update(ctx context.Context, id int64, in AnnouncementInput) (*Announcement, error) {
	a := Announcement{ID: id, Judul: strings.TrimSpace(in.Judul), Isi: strings.TrimSpace(in.Isi), KategoriID: in.KategoriID}
	const q = `
UPDATE pengumuman SET judul=$1, isi=$2, kategori_id=$3, updated_at=now()
WHERE id=$4
RETURNING created_at, updated_at`
	if err := r.db.QueryRow(ctx, q, a.Judul, a.Isi, a.KategoriID, id).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &a, nil
}

func (r *PgAnnouncementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pengumuman WHERE id=$1`, id)
	if err != nil {
		return MapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("announcement")
	}
	return nil
}
