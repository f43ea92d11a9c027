package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
)

// Catalog — неизменяемый каталог продуктов в памяти. Собирается один раз при старте,
// дальше только читается, поэтому блокировки не нужны.
type Catalog struct {
	byCategory map[domain.Category][]domain.Product
	total      int
}

// NewCatalog копирует продукты и заранее упорядочивает их внутри категории:
// рейтинг по убыванию, цена по возрастанию, затем бренд и название.
func NewCatalog(products []domain.Product) *Catalog {
	c := &Catalog{byCategory: make(map[domain.Category][]domain.Product)}
	for _, p := range products {
		p.Tags = append([]string(nil), p.Tags...)
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
	}
	for _, ps := range c.byCategory {
		sort.SliceStable(ps, func(i, j int) bool { return less(&ps[i], &ps[j]) })
		c.total += len(ps)
	}

	return c
}

// Recommend возвращает до q.Limit продуктов категории, у которых есть хотя бы одна из групп
// и которые подходят под сезон и тип кожи. Пустой результат — не ошибка.
func (c *Catalog) Recommend(_ context.Context, q *usecase.RecommendQuery) ([]domain.Product, error) {
	season, skinType := domain.NewWordMatcher(q.Season), domain.NewWordMatcher(q.SkinType)

	out := make([]domain.Product, 0, q.Limit)
	for i := range c.byCategory[q.Category] {
		if len(out) == q.Limit {
			break
		}

		p := &c.byCategory[q.Category][i]
		if !p.HasAnyTag(q.Buckets) || !p.Suits(season, skinType) {
			continue
		}
		out = append(out, clone(p))
	}

	return out, nil
}

func (c *Catalog) Len() int { return c.total }

// Count возвращает число продуктов категории.
func (c *Catalog) Count(category domain.Category) int { return len(c.byCategory[category]) }

func less(a, b *domain.Product) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		return cmp < 0
	}
	if a.Brand != b.Brand {
		return strings.ToLower(a.Brand) < strings.ToLower(b.Brand)
	}

	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// clone отдаёт копию, чтобы вызывающий не мог изменить теги каталога.
func clone(p *domain.Product) domain.Product {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return cp
}
