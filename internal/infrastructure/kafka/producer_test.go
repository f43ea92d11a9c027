package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func (c *captureWriter) Close() error { return nil }

func testEvent() *usecase.PredictionEvent {
	return &usecase.PredictionEvent{
		EventID:   "ev-1",
		RequestID: "req-1",
		Labels: map[domain.Attribute]domain.Label{
			domain.SkinTone:  "medium",
			domain.HairColor: "dark brown",
		},
		Recommendations: map[domain.Category]int{domain.Foundation: 2, domain.Lipstick: 0},
		ModelVersion:    "clip-b32",
		CreatedAt:       time.Unix(1700000000, 0).UTC(),
	}
}

func TestGetPayloadBytes(t *testing.T) {
	data, err := GetPayloadBytes(testEvent())
	if err != nil {
		t.Fatalf("GetPayloadBytes: %v", err)
	}

	var got structpb.Struct
	if err := proto.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	m := got.AsMap()
	if m["request_id"] != "req-1" || m["model_version"] != "clip-b32" {
		t.Errorf("payload = %v", m)
	}
	labels, _ := m["labels"].(map[string]any)
	if labels["skin_tone"] != "medium" || labels["hair_color"] != "dark brown" {
		t.Errorf("labels = %v", labels)
	}
	recs, _ := m["recommendations"].(map[string]any)
	if recs["foundation"] != float64(2) {
		t.Errorf("recommendations = %v", recs)
	}
	if _, ok := m["image"]; ok {
		t.Error("payload must not carry the image")
	}
}

func TestPublishPredictionKeysByRequestID(t *testing.T) {
	w := &captureWriter{}
	p := &Producer{writer: w, logger: logger.Nop{}}

	if err := p.PublishPrediction(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishPrediction: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "req-1" {
		t.Fatalf("messages = %+v", w.msgs)
	}
}

func TestPublishPredictionPropagatesWriterError(t *testing.T) {
	w := &captureWriter{err: errors.New("no brokers")}
	p := &Producer{writer: w, logger: logger.Nop{}}

	if err := p.PublishPrediction(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error")
	}
}
