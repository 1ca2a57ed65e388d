package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables holding category names. Both share the same shape.
const (
	AnnouncementCategoryTable = "kategori"
	NewsCategoryTable         = "berita_kategori"
)

type Category struct {
	ID        int64     `json:"id"`
	Nama      string    `json:"nama"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, nama string) (*Category, error)
	Delete(ctx context.Context, id int64) error
	// EnsureExists inserts nama unless present and reports whether a row was added.
	EnsureExists(ctx context.Context, nama string) (bool, error)
}

// PgCategoryRepository serves one of the category tables.
type PgCategoryRepository struct {
	db    *pgxpool.Pool
	table string
}

// NewPgCategoryRepository binds the repository to table, which must be one of the
// *CategoryTable constants.
func NewPgCategoryRepository(db *pgxpool.Pool, table string) *PgCategoryRepository {
	switch table {
	case AnnouncementCategoryTable, NewsCategoryTable:
	default:
		panic("unknown category table: " + table)
	}
	return &PgCategoryRepository{db: db, table: table}
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nama, created_at FROM `+r.table+` ORDER BY nama`)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Nama, &cat.CreatedAt); err != nil {
			return nil, MapStoreError(err)
		}
		items = append(items, cat)
	}
	return items, MapStoreError(rows.Err())
}

func (r *PgCategoryRepository) Create(ctx context.Context, nama string) (*Category, error) {
	cat := Category{Nama: strings.TrimSpace(nama)}
	q := `INSERT INTO ` + r.table + ` (nama) VALUES ($1) RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, q, cat.Nama).Scan(&cat.ID, &cat.CreatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &cat, nil
}

func (r *PgCategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE id=$1`, id)
	if err != nil {
		return MapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("category")
	}
	return nil
}

func (r *PgCategoryRepository) EnsureExists(ctx context.Context, nama string) (bool, error) {
	q := `INSERT INTO ` + r.table + ` (nama) VALUES ($1) ON CONFLICT (nama) DO NOTHING`
	tag, err := r.db.Exec(ctx, q, strings.TrimSpace(nama))
	if err != nil {
		return false, MapStoreError(err)
	}
	return tag.RowsAffected() > 0, nil
}
