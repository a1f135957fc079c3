package ads

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const adColumns = `id, user_id, title, description, price, photos, phone, status, is_referral, created_at`

func scanAd(row pgx.Row) (*Ad, error) {
	var a Ad
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Price,
		&a.Photos, &a.Phone, &a.Status, &a.IsReferral, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// normalizePhotos: объявление без фото несёт nil-слайс, а pgx кодирует
// nil []string как SQL NULL — колонка photos объявлена NOT NULL.
func normalizePhotos(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}

// Create вставляет объявление со статусом pending и возвращает его id.
func (r *Repo) Create(ctx context.Context, a *Ad) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ads (user_id, title, description, price, photos, phone, is_referral)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, a.UserID, a.Title, a.Description, a.Price, normalizePhotos(a.Photos), a.Phone, a.IsReferral)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Ad, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id)
	a, err := scanAd(row)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// ListByStatus — страница объявлений в порядке подачи (старые первыми,
// чтобы очередь модерации была честной).
func (r *Repo) ListByStatus(ctx context.Context, st Status, limit, offset int) ([]Ad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adColumns+` FROM ads
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, st, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListRecent — последние объявления статуса, новые первыми (для /ads).
func (r *Repo) ListRecent(ctx context.Context, st Status, limit int) ([]Ad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adColumns+` FROM ads
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, st, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) ListAll(ctx context.Context) ([]Ad, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adColumns+` FROM ads ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) CountByStatus(ctx context.Context, st Status) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ads WHERE status = $1`, st).Scan(&n)
	return n, err
}

// UpdateStatus переводит pending -> to одним стейтментом; условие по статусу
// в самом UPDATE, так что второй модератор не перетрёт чужое решение.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, to Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ads SET status = $2 WHERE id = $1 AND status = 'pending'
	`, id, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// либо объявления нет, либо оно уже решено — различаем
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ads WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyDecided
	}
	return nil
}

func collect(rows pgx.Rows) ([]Ad, error) {
	var out []Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
