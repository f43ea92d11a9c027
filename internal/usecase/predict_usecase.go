package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const publishTimeout = 3 * time.Second

// PredictUseCase ведёт один кадр через все стадии: декодирование, эмбеддинг,
// классификация атрибутов, подбор продуктов. Всё разделяемое состояние только для чтения.
type PredictUseCase struct {
	decoder     ImageDecoder
	extractor   FeatureExtractor
	classifiers []AttributeClassifier
	vocabs      domain.Vocabularies
	scheme      *domain.ColorScheme
	catalog     CatalogRepository
	publisher   EventPublisher
	observer    StageObserver
	vectorSize  int
	logger      logger.Logger
}

// NewPredictUC проверяет, что у каждой категории схемы есть классификатор ведущего атрибута.
// publisher и observer могут быть nil.
func NewPredictUC(decoder ImageDecoder, extractor FeatureExtractor, classifiers []AttributeClassifier,
	vocabs domain.Vocabularies, scheme *domain.ColorScheme, catalog CatalogRepository,
	publisher EventPublisher, observer StageObserver, vectorSize int, logger logger.Logger,
) (*PredictUseCase, error) {
	const op = "NewPredictUC"

	if vectorSize <= 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: vector size must be positive", e.ErrModelLoad))
	}

	byAttr := make(map[domain.Attribute]struct{}, len(classifiers))
	for _, c := range classifiers {
		attr := c.Attribute()
		if _, dup := byAttr[attr]; dup {
			return nil, e.Wrap(op, fmt.Errorf("%w: duplicate classifier for %s", e.ErrModelLoad, attr))
		}
		if _, ok := vocabs[attr]; !ok {
			return nil, e.Wrap(op, fmt.Errorf("%w: no vocabulary for %s", e.ErrModelLoad, attr))
		}
		byAttr[attr] = struct{}{}
	}

	for _, cat := range scheme.Categories() {
		s, _ := scheme.Scheme(cat)
		if _, ok := byAttr[s.Attribute]; !ok {
			return nil, e.Wrap(op, fmt.Errorf("%w: category %s is driven by %s, but no classifier is loaded",
				e.ErrModelLoad, cat, s.Attribute))
		}
	}

	return &PredictUseCase{
		decoder:     decoder,
		extractor:   extractor,
		classifiers: classifiers,
		vocabs:      vocabs,
		scheme:      scheme,
		catalog:     catalog,
		publisher:   publisher,
		observer:    observer,
		vectorSize:  vectorSize,
		logger:      logger,
	}, nil
}

// Predict проходит стадии строго по порядку. Ошибка любой стадии прекращает обработку,
// последующие стадии не выполняются. Повторов на этом уровне нет.
func (p *PredictUseCase) Predict(ctx context.Context, req *PredictReq) (res *PredictRes, err error) {
	const op = "PredictUseCase.Predict"

	if req == nil || req.Image == nil || len(req.Image.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	run := newStageRun(req.RequestID, p.logger, p.observer)
	defer func() {
		if err != nil {
			run.fail(err)
			return
		}
		run.succeed()
	}()

	// Received -> Decoded
	decoded, err := p.decoder.Decode(req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	run.advance(StageDecoded)

	// Decoded -> Embedded
	emb, err := p.extractor.Extract(ctx, decoded)
	if err != nil {
		if !errors.Is(err, e.ErrExtraction) && !errors.Is(err, e.ErrDecode) {
			err = fmt.Errorf("%w: %w", e.ErrExtraction, err)
		}
		return nil, e.Wrap(op, err)
	}
	if emb.Vector.Dim() != p.vectorSize {
		return nil, e.Wrap(op, fmt.Errorf("%w: got %d, want %d", e.ErrVectorSize, emb.Vector.Dim(), p.vectorSize))
	}
	run.advance(StageEmbedded)

	// Embedded -> Classified
	labels, err := p.classify(ctx, emb.Vector)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	run.advance(StageClassified)

	// Classified -> Recommended
	recs, err := p.recommend(ctx, labels, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	run.advance(StageRecommended)

	res = NewPredictRes(req.RequestID, labels, recs, emb.ModelVersion)
	run.advance(StageResponded)

	p.publish(res)

	return res, nil
}

// classify запускает все классификаторы параллельно над одним и тем же вектором.
func (p *PredictUseCase) classify(ctx context.Context, vector domain.FeatureVector) (map[domain.Attribute]domain.Label, error) {
	const op = "PredictUseCase.classify"

	out := make([]domain.Label, len(p.classifiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range p.classifiers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			label, err := c.Classify(vector)
			if err != nil {
				return e.Wrap(string(c.Attribute()), err)
			}
			if !p.vocabs[c.Attribute()].Contains(label) {
				return fmt.Errorf("%w: %s=%q", e.ErrUnknownLabel, c.Attribute(), label)
			}
			out[i] = label

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	labels := make(map[domain.Attribute]domain.Label, len(out))
	for i, c := range p.classifiers {
		labels[c.Attribute()] = out[i]
	}

	return labels, nil
}

func (p *PredictUseCase) recommend(ctx context.Context, labels map[domain.Attribute]domain.Label,
	req *PredictReq) (map[domain.Category][]domain.Product, error) {
	const op = "PredictUseCase.recommend"

	recs := make(map[domain.Category][]domain.Product, len(p.scheme.Categories()))
	for _, cat := range p.scheme.Categories() {
		s, _ := p.scheme.Scheme(cat)
		label := labels[s.Attribute]

		buckets, err := p.scheme.Buckets(cat, label)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrUnknownLabel, err))
		}

		season, skinType := s.DefaultSeason, s.DefaultSkinType
		if req.Season != "" {
			season = req.Season
		}
		if req.SkinType != "" {
			skinType = req.SkinType
		}

		products, err := p.catalog.Recommend(ctx, NewRecommendQuery(cat, buckets, season, skinType, s.Limit))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if len(products) == 0 {
			// пустой список — нормальный исход
			p.logger.Debugf("request %s: no %s products for %s=%s", req.RequestID, cat, s.Attribute, label)
			if p.observer != nil {
				p.observer.ObserveEmptyRecommendation(cat)
			}
			products = []domain.Product{}
		}
		recs[cat] = products
	}

	return recs, nil
}

// publish отправляет событие в фоне: ошибка публикации не влияет на ответ клиенту.
func (p *PredictUseCase) publish(res *PredictRes) {
	if p.publisher == nil {
		return
	}

	event := NewPredictionEvent(uuid.NewString(), res, time.Now().UTC())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.publisher.PublishPrediction(ctx, event); err != nil {
			p.logger.Errorf(err, "request %s: failed to publish prediction event", res.RequestID)
		}
	}()
}
