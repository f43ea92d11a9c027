package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryScheme описывает, как метка атрибута превращается в группы оттенков категории.
type CategoryScheme struct {
	Category        Category
	Attribute       Attribute
	Buckets         map[Label][]string
	DefaultSeason   string
	DefaultSkinType string
	Limit           int
	Swatches        map[string]RGB // образец цвета для группы оттенков
	LipRule         *LipRule       // если задано, Buckets выводятся из образцов, а не из таблицы
}

// ColorScheme — статичная таблица соответствия метка → группы, загружается один раз при старте.
type ColorScheme struct {
	categories map[Category]*CategoryScheme
	order      []Category
}

// NewColorScheme строит схему и проверяет, что соответствие тотально по словарю атрибута:
// у каждой метки есть хотя бы одна группа, и в схеме нет меток вне словаря.
func NewColorScheme(vocabs Vocabularies, schemes []CategoryScheme) (*ColorScheme, error) {
	if len(schemes) == 0 {
		return nil, fmt.Errorf("color scheme has no categories")
	}

	cs := &ColorScheme{categories: make(map[Category]*CategoryScheme, len(schemes))}
	for i := range schemes {
		s := schemes[i]
		if _, dup := cs.categories[s.Category]; dup {
			return nil, fmt.Errorf("category %s is declared twice", s.Category)
		}

		vocab, ok := vocabs[s.Attribute]
		if !ok {
			return nil, fmt.Errorf("category %s: no vocabulary for attribute %s", s.Category, s.Attribute)
		}
		if s.Limit <= 0 {
			return nil, fmt.Errorf("category %s: limit must be positive", s.Category)
		}

		swatches := make(map[string]RGB, len(s.Swatches))
		for tag, c := range s.Swatches {
			norm := NormalizeTags([]string{tag})
			if len(norm) == 0 {
				return nil, fmt.Errorf("category %s: empty swatch tag", s.Category)
			}
			swatches[norm[0]] = c
		}
		s.Swatches = swatches

		buckets := make(map[Label][]string, len(s.Buckets))
		for label, bs := range s.Buckets {
			norm := NormalizeLabel(string(label))
			if !vocab.Contains(norm) {
				return nil, fmt.Errorf("category %s: label %q is not in %s vocabulary", s.Category, label, s.Attribute)
			}
			buckets[norm] = NormalizeTags(bs)
		}
		if s.LipRule != nil {
			if len(buckets) > 0 {
				return nil, fmt.Errorf("category %s: buckets and lip rule are mutually exclusive", s.Category)
			}
			derived, err := cs.deriveLipBuckets(&s, vocab)
			if err != nil {
				return nil, err
			}
			buckets = derived
		}

		var missing []string
		for _, label := range vocab.Labels() {
			if len(buckets[label]) == 0 {
				missing = append(missing, string(label))
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, fmt.Errorf("category %s: no buckets for %s labels: %s",
				s.Category, s.Attribute, strings.Join(missing, ", "))
		}

		s.Buckets = buckets
		cs.categories[s.Category] = &s
		cs.order = append(cs.order, s.Category)
	}

	return cs, nil
}

// deriveLipBuckets считает группы для каждой метки словаря один раз, при сборке схемы.
// Базовая категория должна быть объявлена раньше и вести тот же атрибут.
func (c *ColorScheme) deriveLipBuckets(s *CategoryScheme, vocab *Vocabulary) (map[Label][]string, error) {
	rule := *s.LipRule
	rule.normalize()
	s.LipRule = &rule

	base, ok := c.categories[rule.Base]
	if !ok {
		return nil, fmt.Errorf("category %s: lip rule base %s must be declared before it", s.Category, rule.Base)
	}
	if base.Attribute != s.Attribute {
		return nil, fmt.Errorf("category %s: lip rule base %s is driven by %s, not %s",
			s.Category, rule.Base, base.Attribute, s.Attribute)
	}

	tones := make(map[Label]RGB, len(rule.LipTones))
	for label, tone := range rule.LipTones {
		norm := NormalizeLabel(string(label))
		if !vocab.Contains(norm) {
			return nil, fmt.Errorf("category %s: lip tone label %q is not in %s vocabulary", s.Category, label, s.Attribute)
		}
		tones[norm] = tone
	}
	rule.LipTones = tones

	out := make(map[Label][]string, vocab.Len())
	for _, label := range vocab.Labels() {
		baseBuckets := base.Buckets[label]
		if len(baseBuckets) == 0 {
			return nil, fmt.Errorf("category %s: base %s has no buckets for %q", s.Category, rule.Base, label)
		}
		// первая группа базы — основной оттенок метки
		swatch, ok := base.Swatches[baseBuckets[0]]
		if !ok {
			return nil, fmt.Errorf("category %s: base %s has no swatch for %q", s.Category, rule.Base, baseBuckets[0])
		}

		derived, err := rule.Derive(label, swatch, s.Swatches)
		if err != nil {
			return nil, fmt.Errorf("category %s, %s=%s: %w", s.Category, s.Attribute, label, err)
		}
		out[label] = derived
	}

	return out, nil
}

// Categories возвращает категории в порядке объявления.
func (c *ColorScheme) Categories() []Category {
	out := make([]Category, len(c.order))
	copy(out, c.order)
	return out
}

func (c *ColorScheme) Scheme(category Category) (*CategoryScheme, bool) {
	s, ok := c.categories[category]
	return s, ok
}

// Buckets возвращает группы оттенков категории для метки.
func (c *ColorScheme) Buckets(category Category, label Label) ([]string, error) {
	s, ok := c.categories[category]
	if !ok {
		return nil, fmt.Errorf("category %s is not configured", category)
	}

	b, ok := s.Buckets[label]
	if !ok {
		return nil, fmt.Errorf("category %s: label %q has no buckets", category, label)
	}

	out := make([]string, len(b))
	copy(out, b)
	return out, nil
}
