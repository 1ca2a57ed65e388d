package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord is the stored form of a user, including the bcrypt hash.
type UserRecord struct {
	ID           int64
	NamaDepan    string
	NamaBelakang string
	NomorHp      string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Public drops the password hash.
func (u UserRecord) Public() User {
	return User{
		ID:           u.ID,
		NamaDepan:    u.NamaDepan,
		NamaBelakang: u.NamaBelakang,
		NomorHp:      u.NomorHp,
		Email:        u.Email,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

// UserRepository is the credential store. Create must fail with an error wrapping
// ErrDuplicate when the email is taken; the check is the store's, not the caller's.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id int64) (*UserRecord, error)
	Create(ctx context.Context, rec UserRecord) (*UserRecord, error)
	Delete(ctx context.Context, id int64) error
	HasAdmin(ctx context.Context) (bool, error)
	List(ctx context.Context, page, perPage int) ([]User, int, error)
}

// PgUserRepository implements UserRepository on the users table (unique index on email).
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, nama_depan, nama_belakang, nomor_hp, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	if err := row.Scan(&u.ID, &u.NamaDepan, &u.NamaBelakang, &u.NomorHp, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err != nil {
		return nil, MapStoreError(err)
	}
	return u, nil
}

func (r *PgUserRepository) FindByID(ctx context.Context, id int64) (*UserRecord, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, MapStoreError(err)
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, rec UserRecord) (*UserRecord, error) {
	const q = `
INSERT INTO users (nama_depan, nama_belakang, nomor_hp, email, password_hash, role)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, q, rec.NamaDepan, rec.NamaBelakang, rec.NomorHp, rec.Email, rec.PasswordHash, rec.Role).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, MapStoreError(err)
	}
	return &rec, nil
}

func (r *PgUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return MapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("user")
	}
	return nil
}

func (r *PgUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1 FROM users WHERE role='admin' LIMIT 1`).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, MapStoreError(err)
	}
	return true, nil
}

// List returns one page of users ordered by id, without password hashes.
func (r *PgUserRepository) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, MapStoreError(err)
	}
	rows, err := r.db.Query(ctx, `
SELECT id, nama_depan, nama_belakang, nomor_hp, email, role, created_at
FROM users ORDER BY id LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, MapStoreError(err)
	}
	defer rows.Close()
	items := make([]User, 0, perPage)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.NamaDepan, &u.NamaBelakang, &u.NomorHp, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, 0, MapStoreError(err)
		}
		items = append(items, u)
	}
	return items, total, MapStoreError(rows.Err())
}
