package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
// Цена читается как текст (price::text), чтобы не терять точность NUMERIC.
type ProductModel struct {
	ID        int64      `db:"id"`
	Category  string     `db:"category"`
	Brand     string     `db:"brand"`
	Name      string     `db:"name"`
	Price     string     `db:"price"`
	Rating    float64    `db:"rating"`
	Seasons   string     `db:"seasons"`
	SkinTypes string     `db:"skin_types"`
	Shades    []string   `db:"shades"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}
