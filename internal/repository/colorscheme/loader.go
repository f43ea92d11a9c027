package colorscheme

import (
	"bytes"
	"fmt"
	"os"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"gopkg.in/yaml.v3"
)

type fileScheme struct {
	Vocabularies map[string][]string `yaml:"vocabularies"`
	Categories   []fileCategory      `yaml:"categories"`
}

type fileCategory struct {
	Category  string              `yaml:"category"`
	Attribute string              `yaml:"attribute"`
	Season    string              `yaml:"season"`
	SkinType  string              `yaml:"skin_type"`
	Limit     int                 `yaml:"limit"`
	Buckets   map[string][]string `yaml:"buckets"`
	Swatches  map[string]string   `yaml:"swatches"`
	LipRule   *fileLipRule        `yaml:"lip_rule"`
}

// fileLipRule — правило вывода групп помады из образцов (см. domain.LipRule).
type fileLipRule struct {
	Base         string            `yaml:"base"`
	LipTone      string            `yaml:"lip_tone"`
	LipTones     map[string]string `yaml:"lip_tones"`
	DarkenFactor float64           `yaml:"darken_factor"`
	Count        int               `yaml:"count"`
}

// Load читает файл схемы. Если секция vocabularies отсутствует, используются словари по умолчанию.
// defaultLimit применяется к категориям без собственного limit.
func Load(path string, defaultLimit int) (domain.Vocabularies, *domain.ColorScheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrInvalidColorScheme, err))
	}

	return Parse(data, defaultLimit)
}

func Parse(data []byte, defaultLimit int) (domain.Vocabularies, *domain.ColorScheme, error) {
	const op = "colorscheme.Parse"

	var raw fileScheme
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrInvalidColorScheme, err))
	}

	vocabs, err := toVocabularies(raw.Vocabularies)
	if err != nil {
		return nil, nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrInvalidColorScheme, err))
	}

	schemes := make([]domain.CategoryScheme, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		s, err := toCategoryScheme(c, defaultLimit)
		if err != nil {
			return nil, nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrInvalidColorScheme, err))
		}
		schemes = append(schemes, s)
	}

	cs, err := domain.NewColorScheme(vocabs, schemes)
	if err != nil {
		return nil, nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrInvalidColorScheme, err))
	}

	return vocabs, cs, nil
}

func toVocabularies(raw map[string][]string) (domain.Vocabularies, error) {
	if len(raw) == 0 {
		return domain.DefaultVocabularies(), nil
	}

	vocabs := make(domain.Vocabularies, len(raw))
	for name, labels := range raw {
		attr, err := domain.ParseAttribute(name)
		if err != nil {
			return nil, err
		}
		v, err := domain.NewVocabulary(attr, labels)
		if err != nil {
			return nil, err
		}
		vocabs[attr] = v
	}

	// у каждого атрибута должен быть словарь, иначе классификатор не загрузить
	for _, attr := range domain.Attributes {
		if _, ok := vocabs[attr]; !ok {
			return nil, fmt.Errorf("no vocabulary for %s", attr)
		}
	}

	return vocabs, nil
}

func toCategoryScheme(c fileCategory, defaultLimit int) (domain.CategoryScheme, error) {
	cat, err := domain.ParseCategory(c.Category)
	if err != nil {
		return domain.CategoryScheme{}, err
	}
	attr, err := domain.ParseAttribute(c.Attribute)
	if err != nil {
		return domain.CategoryScheme{}, fmt.Errorf("category %s: %w", cat, err)
	}

	limit := c.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	buckets := make(map[domain.Label][]string, len(c.Buckets))
	for label, bs := range c.Buckets {
		buckets[domain.Label(label)] = bs
	}

	swatches := make(map[string]domain.RGB, len(c.Swatches))
	for tag, hex := range c.Swatches {
		rgb, err := domain.ParseHex(hex)
		if err != nil {
			return domain.CategoryScheme{}, fmt.Errorf("category %s, swatch %s: %w", cat, tag, err)
		}
		swatches[tag] = rgb
	}

	var rule *domain.LipRule
	if c.LipRule != nil {
		rule, err = toLipRule(c.LipRule)
		if err != nil {
			return domain.CategoryScheme{}, fmt.Errorf("category %s: %w", cat, err)
		}
	}

	return domain.CategoryScheme{
		Category:        cat,
		Attribute:       attr,
		Buckets:         buckets,
		DefaultSeason:   c.Season,
		DefaultSkinType: c.SkinType,
		Limit:           limit,
		Swatches:        swatches,
		LipRule:         rule,
	}, nil
}

func toLipRule(r *fileLipRule) (*domain.LipRule, error) {
	base, err := domain.ParseCategory(r.Base)
	if err != nil {
		return nil, fmt.Errorf("lip rule: %w", err)
	}

	rule := &domain.LipRule{
		Base:         base,
		LipTone:      domain.DefaultLipTone,
		LipTones:     make(map[domain.Label]domain.RGB, len(r.LipTones)),
		DarkenFactor: r.DarkenFactor,
		Count:        r.Count,
	}
	if r.LipTone != "" {
		if rule.LipTone, err = domain.ParseHex(r.LipTone); err != nil {
			return nil, fmt.Errorf("lip rule: %w", err)
		}
	}
	for label, hex := range r.LipTones {
		tone, err := domain.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("lip rule, tone %s: %w", label, err)
		}
		rule.LipTones[domain.Label(label)] = tone
	}

	return rule, nil
}
