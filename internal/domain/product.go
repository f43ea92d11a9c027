package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Product описывает позицию каталога косметики
type Product struct {
	Brand     string
	Name      string
	Price     decimal.Decimal
	Rating    float64
	Category  Category
	Tags      []string // оттенки/цветовые группы, по которым идёт сопоставление с меткой
	Seasons   string   // "all seasons, Summer, Winter"
	SkinTypes string   // "Oily, Combination"
}

func NewProduct(brand, name string, price decimal.Decimal, rating float64, category Category,
	tags []string, seasons, skinTypes string) *Product {
	return &Product{
		Brand:     strings.TrimSpace(brand),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Rating:    rating,
		Category:  category,
		Tags:      NormalizeTags(tags),
		Seasons:   strings.TrimSpace(seasons),
		SkinTypes: strings.TrimSpace(skinTypes),
	}
}

// HasAnyTag проверяет, есть ли у продукта хотя бы одна из групп (без учёта регистра).
func (p *Product) HasAnyTag(buckets []string) bool {
	for _, b := range buckets {
		b = strings.ToLower(strings.TrimSpace(b))
		for _, t := range p.Tags {
			if t == b {
				return true
			}
		}
	}

	return false
}

// SuitsSeason — целословное вхождение сезона в список сезонов продукта.
func (p *Product) SuitsSeason(season string) bool {
	return NewWordMatcher(season).Match(p.Seasons)
}

// SuitsSkinType — целословное вхождение типа кожи в список типов кожи продукта.
func (p *Product) SuitsSkinType(skinType string) bool {
	return NewWordMatcher(skinType).Match(p.SkinTypes)
}

// Suits проверяет сезон и тип кожи уже собранными матчерами (один раз на запрос).
func (p *Product) Suits(season, skinType *WordMatcher) bool {
	return season.Match(p.Seasons) && skinType.Match(p.SkinTypes)
}

// SplitTags разбирает строку вида "fair, light" в нормализованный список.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.Join(strings.Fields(strings.ToLower(t)), " ")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}

// WordMatcher повторяет поведение `\bterm\b` без учёта регистра. Пустой term подходит всегда.
type WordMatcher struct {
	re *regexp.Regexp
}

func NewWordMatcher(term string) *WordMatcher {
	term = strings.TrimSpace(term)
	if term == "" {
		return &WordMatcher{}
	}

	// QuoteMeta даёт всегда валидное выражение
	return &WordMatcher{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)}
}

func (m *WordMatcher) Match(s string) bool {
	if m == nil || m.re == nil {
		return true
	}

	return m.re.MatchString(s)
}
