package domain

import (
	"fmt"
	"strings"
)

// Attribute — распознаваемый атрибут внешности.
type Attribute string

const (
	EyeColor     Attribute = "eye_color"
	HairColor    Attribute = "hair_color"
	EyebrowColor Attribute = "eyebrow_color"
	SkinTone     Attribute = "skin_tone"
)

// Attributes — все атрибуты в порядке загрузки классификаторов.
var Attributes = []Attribute{EyeColor, HairColor, EyebrowColor, SkinTone}

func ParseAttribute(s string) (Attribute, error) {
	a := Attribute(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range Attributes {
		if a == known {
			return a, nil
		}
	}

	return "", fmt.Errorf("unknown attribute %q", s)
}

// Label — значение атрибута из закрытого словаря.
type Label string

// NormalizeLabel приводит метку к каноничному виду (нижний регистр, без лишних пробелов).
func NormalizeLabel(s string) Label {
	return Label(strings.Join(strings.Fields(strings.ToLower(s)), " "))
}

// Vocabulary — закрытый словарь меток атрибута. Индекс метки совпадает с id класса,
// которым её закодировал пайплайн обучения.
type Vocabulary struct {
	attribute Attribute
	labels    []Label
	index     map[Label]int
}

func NewVocabulary(attribute Attribute, labels []string) (*Vocabulary, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("vocabulary for %s is empty", attribute)
	}

	v := &Vocabulary{
		attribute: attribute,
		labels:    make([]Label, 0, len(labels)),
		index:     make(map[Label]int, len(labels)),
	}
	for i, raw := range labels {
		l := NormalizeLabel(raw)
		if l == "" {
			return nil, fmt.Errorf("vocabulary for %s: empty label at position %d", attribute, i)
		}
		if _, dup := v.index[l]; dup {
			return nil, fmt.Errorf("vocabulary for %s: duplicate label %q", attribute, l)
		}
		v.index[l] = i
		v.labels = append(v.labels, l)
	}

	return v, nil
}

func (v *Vocabulary) Attribute() Attribute { return v.attribute }

func (v *Vocabulary) Len() int { return len(v.labels) }

// Label возвращает метку по id класса.
func (v *Vocabulary) Label(classID int) (Label, error) {
	if classID < 0 || classID >= len(v.labels) {
		return "", fmt.Errorf("%s: class id %d out of range [0, %d)", v.attribute, classID, len(v.labels))
	}

	return v.labels[classID], nil
}

func (v *Vocabulary) Contains(l Label) bool {
	_, ok := v.index[l]
	return ok
}

// Labels возвращает копию словаря.
func (v *Vocabulary) Labels() []Label {
	out := make([]Label, len(v.labels))
	copy(out, v.labels)
	return out
}

// Vocabularies — словари всех атрибутов.
type Vocabularies map[Attribute]*Vocabulary

// DefaultVocabularies — словари, которыми были закодированы метки при обучении классификаторов.
func DefaultVocabularies() Vocabularies {
	raw := map[Attribute][]string{
		EyeColor:     {"blue", "brown", "dark", "dark brown", "gray", "green"},
		HairColor:    {"black", "blonde", "brown", "dark", "dark brown", "gray", "light brown", "red"},
		EyebrowColor: {"black", "blonde", "brown", "dark", "dark brown", "gray"},
		SkinTone:     {"dark", "fair", "light", "medium"},
	}

	out := make(Vocabularies, len(raw))
	for attr, labels := range raw {
		v, err := NewVocabulary(attr, labels)
		if err != nil {
			panic(err) // статичные данные
		}
		out[attr] = v
	}

	return out
}
