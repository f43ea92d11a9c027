package pgdb

import (
	"context"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// ListAll читает весь каталог. Вызывается один раз при старте сервиса.
func (p *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, category, brand, name, price::text, rating, seasons, skin_types, shades
		FROM products
		ORDER BY category, rating DESC, price ASC, brand, name
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Category, &model.Brand, &model.Name, &model.Price,
			&model.Rating, &model.Seasons, &model.SkinTypes, &model.Shades,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		product, err := p.conv.ToEntity(&model)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Upsert идемпотентно создаёт или обновляет продукт по (category, brand, name).
// Запись обновляется только если что-то изменилось.
func (p *ProductRepo) Upsert(ctx context.Context, product *domain.Product) (*usecase.UpsertProductRes, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// VALUES ($1..$8) category, brand, name, price, rating, seasons, skin_types, shades
	query := `
		WITH upsert AS (
		INSERT INTO products (category, brand, name, price, rating, seasons, skin_types, shades)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		ON CONFLICT (category, brand, name)
		DO UPDATE SET
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			seasons = EXCLUDED.seasons,
			skin_types = EXCLUDED.skin_types,
			shades = EXCLUDED.shades,
			updated_at = NOW()
		WHERE
			products.price IS DISTINCT FROM EXCLUDED.price OR
			products.rating IS DISTINCT FROM EXCLUDED.rating OR
			products.seasons IS DISTINCT FROM EXCLUDED.seasons OR
			products.skin_types IS DISTINCT FROM EXCLUDED.skin_types OR
			products.shades IS DISTINCT FROM EXCLUDED.shades
		RETURNING
			id, category, brand, name, price::text, rating, seasons, skin_types, shades,
			(xmax = 0) AS inserted
		)
		SELECT
			id, category, brand, name, price, rating, seasons, skin_types, shades,
			inserted, false AS no_changes
		FROM upsert

		UNION ALL

		SELECT
			id, category, brand, name, price::text, rating, seasons, skin_types, shades,
			false AS inserted, true AS no_changes
		FROM products
		WHERE category = $1 AND brand = $2 AND name = $3
		  AND NOT EXISTS (SELECT 1 FROM upsert);
	`

	m := p.conv.ToModel(product)
	var (
		model     converter.ProductModel
		inserted  bool
		noChanges bool
	)
	err = tx.QueryRow(ctx, query,
		m.Category, m.Brand, m.Name, m.Price, m.Rating, m.Seasons, m.SkinTypes, m.Shades,
	).Scan(
		&model.ID, &model.Category, &model.Brand, &model.Name, &model.Price,
		&model.Rating, &model.Seasons, &model.SkinTypes, &model.Shades,
		&inserted, &noChanges,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	entity, err := p.conv.ToEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return usecase.NewUpsertProductRes(entity, inserted, noChanges), nil
}

// DeleteExcept удаляет продукты категории, которых нет среди keep (по бренду и названию).
func (p *ProductRepo) DeleteExcept(ctx context.Context, category domain.Category, keep []domain.Product) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	brands := make([]string, 0, len(keep))
	names := make([]string, 0, len(keep))
	for _, pr := range keep {
		if pr.Category != category {
			continue
		}
		brands = append(brands, pr.Brand)
		names = append(names, pr.Name)
	}

	query := `
		DELETE FROM products pr
		WHERE pr.category = $1
		  AND NOT EXISTS (
			SELECT 1 FROM unnest($2::text[], $3::text[]) AS k(brand, name)
			WHERE k.brand = pr.brand AND k.name = pr.name
		  )
	`

	tag, err := tx.Exec(ctx, query, string(category), brands, names)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected(), nil
}
