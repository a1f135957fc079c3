package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, joined, phone, blocked FROM users WHERE id = $1
	`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Joined, &u.Phone, &u.Blocked); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Upsert регистрирует пользователя при первом контакте.
// Повторный /start ничего не затирает.
func (r *Repo) Upsert(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, joined, phone, blocked
	`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Joined, &u.Phone, &u.Blocked); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) SetPhone(ctx context.Context, id int64, phone string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET phone = $2 WHERE id = $1`, id, phone)
	return err
}

func (r *Repo) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET blocked = $2 WHERE id = $1`, id, blocked)
	return err
}

// ListRecipients — все не заблокировавшие бота, в порядке регистрации.
func (r *Repo) ListRecipients(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, joined, phone, blocked
		FROM users WHERE NOT blocked
		ORDER BY joined
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Joined, &u.Phone, &u.Blocked); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
