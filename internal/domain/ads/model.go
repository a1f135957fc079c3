package ads

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound = errors.New("объявление не найдено")
	// ErrAlreadyDecided — повторное решение по уже решённому объявлению.
	// Статус меняется ровно один раз: pending -> approved|rejected.
	ErrAlreadyDecided = errors.New("объявление уже обработано")
)

type Ad struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Price       int64
	Photos      []string // Telegram file_id, в порядке прихода, максимум 5
	Phone       string
	Status      Status
	IsReferral  bool
	CreatedAt   time.Time
}
