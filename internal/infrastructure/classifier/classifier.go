package classifier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/klauspost/compress/gzip"
)

// Classifier сопоставляет вектору признаков метку атрибута. Без состояния, безопасен для параллельного вызова.
type Classifier struct {
	attribute domain.Attribute
	vocab     *domain.Vocabulary
	forest    *Forest
}

// New связывает ансамбль со словарём: каждый id класса обязан быть в словаре,
// а размерность признаков — совпадать с размерностью эмбеддинга.
func New(attribute domain.Attribute, vocab *domain.Vocabulary, forest *Forest, nFeatures int) (*Classifier, error) {
	const op = "classifier.New"

	if vocab == nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: no vocabulary for %s", e.ErrModelLoad, attribute))
	}
	if forest.NFeatures != nFeatures {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s expects %d features, embedding has %d",
			e.ErrModelLoad, attribute, forest.NFeatures, nFeatures))
	}
	for _, id := range forest.Classes {
		if _, err := vocab.Label(id); err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrModelLoad, err))
		}
	}

	return &Classifier{attribute: attribute, vocab: vocab, forest: forest}, nil
}

func (c *Classifier) Attribute() domain.Attribute { return c.attribute }

func (c *Classifier) Classify(vector domain.FeatureVector) (domain.Label, error) {
	const op = "Classifier.Classify"

	if vector.Dim() != c.forest.NFeatures {
		return "", e.Wrap(op, fmt.Errorf("%w: %s expects %d features, got %d",
			e.ErrVectorSize, c.attribute, c.forest.NFeatures, vector.Dim()))
	}

	idx := c.forest.Predict(vector)
	label, err := c.vocab.Label(c.forest.Classes[idx])
	if err != nil {
		// невозможно после New, оставлено на случай рассинхронизации словаря
		return "", e.Wrap(op, fmt.Errorf("%w: %w", e.ErrUnknownLabel, err))
	}

	return label, nil
}

// ArtifactNames — имена файлов артефакта в порядке поиска.
func ArtifactNames(attribute domain.Attribute) []string {
	base := string(attribute) + "_classifier.json"
	return []string{base + ".gz", base}
}

// LoadFile читает артефакт, .gz распаковывается на лету.
func LoadFile(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", filepath.Base(path), err)
		}
		defer zr.Close()
		r = zr
	}

	forest, err := DecodeForest(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return forest, nil
}

// LoadAll загружает по классификатору на каждый атрибут из каталога моделей.
// Отсутствие или несовместимость любого артефакта — ErrModelLoad.
func LoadAll(dir string, vocabs domain.Vocabularies, nFeatures int, log logger.Logger) ([]*Classifier, error) {
	const op = "classifier.LoadAll"

	out := make([]*Classifier, 0, len(domain.Attributes))
	for _, attr := range domain.Attributes {
		path, err := findArtifact(dir, attr)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		forest, err := LoadFile(path)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrModelLoad, err))
		}

		c, err := New(attr, vocabs[attr], forest, nFeatures)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		log.Infof("classifier %s loaded from %s: %d trees, %d classes, %s voting",
			attr, filepath.Base(path), len(forest.Trees), len(forest.Classes), forest.Voting)

		out = append(out, c)
	}

	return out, nil
}

func findArtifact(dir string, attr domain.Attribute) (string, error) {
	names := ArtifactNames(attr)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", e.ErrModelLoad, err)
		}
	}

	return "", fmt.Errorf("%w: none of %s found in %s", e.ErrModelLoad, strings.Join(names, ", "), dir)
}
