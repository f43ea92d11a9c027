package classifier

import (
	"encoding/json"
	"fmt"
	"io"
)

type Voting string

const (
	VotingSoft Voting = "soft" // усреднение распределений листьев (predict_proba случайного леса)
	VotingHard Voting = "hard" // большинство голосов деревьев
)

const leaf = -1

// Tree — дерево решений в плоском виде: i-й элемент каждого массива описывает узел i.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest — экспортированный ансамбль деревьев.
type Forest struct {
	NFeatures int    `json:"n_features"`
	Classes   []int  `json:"classes"`
	Voting    Voting `json:"voting"`
	Trees     []Tree `json:"trees"`
}

// DecodeForest читает артефакт и проверяет его структуру.
func DecodeForest(r io.Reader) (*Forest, error) {
	var f Forest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if f.Voting == "" {
		f.Voting = VotingSoft
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *Forest) validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", f.NFeatures)
	}
	if len(f.Classes) == 0 {
		return fmt.Errorf("no classes")
	}
	if f.Voting != VotingSoft && f.Voting != VotingHard {
		return fmt.Errorf("unknown voting %q", f.Voting)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("no trees")
	}

	for ti := range f.Trees {
		if err := f.Trees[ti].validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", ti, err)
		}
	}

	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}

	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return fmt.Errorf("node %d has a single child", i)
			}
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d values, want %d", i, len(t.Value[i]), nClasses)
			}
			var sum float64
			for _, v := range t.Value[i] {
				if v < 0 {
					return fmt.Errorf("leaf %d has a negative value", i)
				}
				sum += v
			}
			if sum == 0 {
				return fmt.Errorf("leaf %d is empty", i)
			}
			continue
		}

		// дети всегда правее родителя: так обход гарантированно завершается
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has children out of range (%d, %d)", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d out of [0, %d)", i, f, nFeatures)
		}
	}

	return nil
}

// leafValues спускается по дереву: x[feature] <= threshold — влево.
func (t *Tree) leafValues(x []float32) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if float64(x[t.Feature[node]]) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}

	return t.Value[node]
}

// Predict возвращает индекс класса в Classes. При равенстве побеждает меньший индекс.
// Длину x проверяет вызывающий.
func (f *Forest) Predict(x []float32) int {
	scores := make([]float64, len(f.Classes))
	for ti := range f.Trees {
		values := f.Trees[ti].leafValues(x)

		switch f.Voting {
		case VotingHard:
			scores[argmax(values)]++
		default:
			var sum float64
			for _, v := range values {
				sum += v
			}
			for c, v := range values {
				scores[c] += v / sum
			}
		}
	}

	return argmax(scores)
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}

	return best
}
