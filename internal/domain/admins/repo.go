package admins

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo — таблица-множество админов. Проверка прав идёт по базе на каждом
// защищённом действии, без кэша: добавление/удаление видно сразу.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Ensure гарантирует строку оператора из конфига. Вызывается на старте.
func (r *Repo) Ensure(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admins (user_id) VALUES ($1) ON CONFLICT DO NOTHING
	`, userID)
	return err
}

func (r *Repo) Add(ctx context.Context, userID int64) error {
	return r.Ensure(ctx, userID)
}

func (r *Repo) Remove(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	return err
}

func (r *Repo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)
	`, userID).Scan(&ok)
	return ok, err
}

func (r *Repo) List(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM admins ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
