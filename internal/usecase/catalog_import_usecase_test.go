package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/DRSN-tech/beauty-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type fakeTx struct {
	pgx.Tx
	committed, rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type fakeDB struct{ tx *fakeTx }

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) { return f.tx, nil }

func (f *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) { return f.tx, nil }

type fakeProductRepo struct {
	existing map[string]domain.Product
	failOn   string
	pruned   []domain.Category
}

func (f *fakeProductRepo) ListAll(context.Context) ([]domain.Product, error) { return nil, nil }

func (f *fakeProductRepo) Upsert(ctx context.Context, p *domain.Product) (*UpsertProductRes, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return nil, err
	}
	if p.Name == f.failOn {
		return nil, errors.New("constraint violation")
	}

	old, ok := f.existing[p.Name]
	switch {
	case !ok:
		return NewUpsertProductRes(p, true, false), nil
	case old.Price.Equal(p.Price) && old.Rating == p.Rating:
		return NewUpsertProductRes(p, false, true), nil
	default:
		return NewUpsertProductRes(p, false, false), nil
	}
}

func (f *fakeProductRepo) DeleteExcept(ctx context.Context, cat domain.Category, _ []domain.Product) (int64, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return 0, err
	}
	f.pruned = append(f.pruned, cat)
	return 1, nil
}

func importProduct(name, price string, rating float64) domain.Product {
	return *domain.NewProduct("Brand", name, decimal.RequireFromString(price), rating,
		domain.Foundation, []string{"fair"}, "", "")
}

func TestCatalogImportCounts(t *testing.T) {
	repo := &fakeProductRepo{existing: map[string]domain.Product{
		"Same":    importProduct("Same", "10", 4.5),
		"Changed": importProduct("Changed", "10", 4.5),
	}}
	db := &fakeDB{tx: &fakeTx{}}
	uc := NewCatalogImportUC(repo, db, logger.Nop{})

	progress := 0
	res, err := uc.Import(context.Background(), NewImportCatalogReq([]domain.Product{
		importProduct("Same", "10", 4.5),
		importProduct("Changed", "12", 4.5),
		importProduct("New", "9", 4.1),
	}, true, func(n int) { progress += n }))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if res.Inserted != 1 || res.Updated != 1 || res.Unchanged != 1 || res.Deleted != int64(len(domain.Categories)) {
		t.Errorf("unexpected result: %+v", res)
	}
	if progress != 3 {
		t.Errorf("progress = %d, want 3", progress)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Errorf("committed=%v rolledBack=%v", db.tx.committed, db.tx.rolledBack)
	}
	if len(repo.pruned) != len(domain.Categories) {
		t.Errorf("pruned %v", repo.pruned)
	}
}

func TestCatalogImportRollsBackOnError(t *testing.T) {
	repo := &fakeProductRepo{failOn: "Broken"}
	db := &fakeDB{tx: &fakeTx{}}
	uc := NewCatalogImportUC(repo, db, logger.Nop{})

	_, err := uc.Import(context.Background(), NewImportCatalogReq([]domain.Product{
		importProduct("Fine", "10", 4.5),
		importProduct("Broken", "10", 4.5),
	}, false, nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Errorf("committed=%v rolledBack=%v", db.tx.committed, db.tx.rolledBack)
	}
	if len(repo.pruned) != 0 {
		t.Error("prune ran without Prune flag")
	}
}

func TestCatalogImportValidation(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	uc := NewCatalogImportUC(&fakeProductRepo{}, db, logger.Nop{})

	cases := map[string][]domain.Product{
		"empty":     nil,
		"duplicate": {importProduct("A", "1", 4), importProduct("A", "2", 4)},
		"no brand": {*domain.NewProduct("", "A", decimal.NewFromInt(1), 4,
			domain.Lipstick, nil, "", "")},
	}
	for name, products := range cases {
		if _, err := uc.Import(context.Background(), NewImportCatalogReq(products, false, nil)); !errors.Is(err, e.ErrCatalogLoad) {
			t.Errorf("%s: want ErrCatalogLoad, got %v", name, err)
		}
	}

	bad := []domain.Product{*domain.NewProduct("A", "B", decimal.NewFromInt(1), 4, "mascara", nil, "", "")}
	if _, err := uc.Import(context.Background(), NewImportCatalogReq(bad, false, nil)); !errors.Is(err, e.ErrUnknownCategory) {
		t.Errorf("want ErrUnknownCategory, got %v", err)
	}
	if db.tx.committed || db.tx.rolledBack {
		t.Error("transaction touched during validation")
	}
}
