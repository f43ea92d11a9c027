package usecase

import (
	"time"

	"github.com/DRSN-tech/beauty-backend/pkg/logger"
)

// Stage — состояние запроса в конвейере распознавания.
type Stage string

const (
	StageReceived    Stage = "received"
	StageDecoded     Stage = "decoded"
	StageEmbedded    Stage = "embedded"
	StageClassified  Stage = "classified"
	StageRecommended Stage = "recommended"
	StageResponded   Stage = "responded"
	StageFailed      Stage = "failed"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// stageRun отслеживает переходы одного запроса: Received → ... → Responded или → Failed.
// Переходы только вперёд, по одному шагу.
type stageRun struct {
	requestID string
	current   Stage
	started   time.Time
	logger    logger.Logger
	observer  StageObserver
	history   []Stage
}

var stageOrder = map[Stage]Stage{
	StageReceived:    StageDecoded,
	StageDecoded:     StageEmbedded,
	StageEmbedded:    StageClassified,
	StageClassified:  StageRecommended,
	StageRecommended: StageResponded,
}

func newStageRun(requestID string, logger logger.Logger, observer StageObserver) *stageRun {
	return &stageRun{
		requestID: requestID,
		current:   StageReceived,
		started:   time.Now(),
		logger:    logger,
		observer:  observer,
		history:   []Stage{StageReceived},
	}
}

// advance переводит запрос в следующую стадию; время с прошлого перехода записывается как длительность стадии next.
func (s *stageRun) advance(next Stage) {
	if want, ok := stageOrder[s.current]; !ok || want != next {
		// ошибка программиста: стадии нельзя пропускать
		panic("illegal stage transition " + string(s.current) + " -> " + string(next))
	}

	now := time.Now()
	if s.observer != nil {
		s.observer.ObserveStage(next, now.Sub(s.started))
	}
	s.logger.Debugf("request %s: %s -> %s", s.requestID, s.current, next)

	s.current = next
	s.started = now
	s.history = append(s.history, next)
}

func (s *stageRun) fail(err error) {
	s.logger.Warnf("request %s failed at stage %s: %v", s.requestID, s.current, err)
	s.history = append(s.history, StageFailed)
	if s.observer != nil {
		s.observer.ObserveOutcome(OutcomeFailure)
	}
}

func (s *stageRun) succeed() {
	if s.observer != nil {
		s.observer.ObserveOutcome(OutcomeSuccess)
	}
}
