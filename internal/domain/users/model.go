package users

import "time"

// User — любой, кто хоть раз написал боту. ID совпадает с Telegram ID.
// Записи никогда не удаляются: при «bot was blocked» только ставится флаг.
type User struct {
	ID      int64
	Joined  time.Time
	Phone   *string
	Blocked bool
}
