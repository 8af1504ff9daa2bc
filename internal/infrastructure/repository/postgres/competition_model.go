package postgres

import "time"

type competitionTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Season    string    `db:"season"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
