package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/DRSN-tech/beauty-backend/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// CatalogImportUseCase переносит каталог (обычно из книги Excel) в PostgreSQL.
type CatalogImportUseCase struct {
	productRepo ProductRepository
	dbPool      transaction.Transactional
	logger      logger.Logger
}

func NewCatalogImportUC(productRepo ProductRepository, dbPool transaction.Transactional, logger logger.Logger) *CatalogImportUseCase {
	return &CatalogImportUseCase{
		productRepo: productRepo,
		dbPool:      dbPool,
		logger:      logger,
	}
}

// Import записывает все продукты одной транзакцией: либо каталог обновлён целиком, либо не изменён.
func (c *CatalogImportUseCase) Import(ctx context.Context, req *ImportCatalogReq) (*ImportCatalogRes, error) {
	const op = "CatalogImportUseCase.Import"

	var err error
	if err = validateImport(req.Products); err != nil {
		return nil, e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				c.logger.Errorf(rbErr, "catalog import rollback failed")
			}
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		err = e.ErrTransactionNotFound
		return nil, e.Wrap(op, err)
	}
	ctx = tr.WithTx(ctx, pgxTx)

	res := &ImportCatalogRes{}
	for i := range req.Products {
		var up *UpsertProductRes
		up, err = c.productRepo.Upsert(ctx, &req.Products[i])
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		switch {
		case up.NoChanges:
			res.Unchanged++
		case up.Inserted:
			res.Inserted++
		default:
			res.Updated++
		}
		if req.Progress != nil {
			req.Progress(1)
		}
	}

	if req.Prune {
		for _, cat := range domain.Categories {
			var n int64
			n, err = c.productRepo.DeleteExcept(ctx, cat, req.Products)
			if err != nil {
				return nil, e.Wrap(op, err)
			}
			res.Deleted += n
		}
	}

	// Коммит изменений в бд
	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("catalog import done: inserted=%d updated=%d unchanged=%d deleted=%d",
		res.Inserted, res.Updated, res.Unchanged, res.Deleted)
	return res, nil
}

// validateImport отсекает заведомо битые строки до открытия транзакции.
func validateImport(products []domain.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("%w: nothing to import", e.ErrCatalogLoad)
	}

	type key struct {
		cat         domain.Category
		brand, name string
	}
	seen := make(map[key]struct{}, len(products))
	for _, p := range products {
		if _, err := domain.ParseCategory(string(p.Category)); err != nil {
			return fmt.Errorf("%w: %q", e.ErrUnknownCategory, p.Category)
		}
		if p.Name == "" || p.Brand == "" {
			return fmt.Errorf("%w: product without brand or name", e.ErrCatalogLoad)
		}
		k := key{p.Category, p.Brand, p.Name}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate product %s %q", e.ErrCatalogLoad, p.Brand, p.Name)
		}
		seen[k] = struct{}{}
	}

	return nil
}
