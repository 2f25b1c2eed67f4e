package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "snappy")

	err := p.Publish(context.Background(), "sentinel.console.snapshots", []byte("market"), map[string]int{"totalTrades": 3})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "sentinel.console.snapshots" || string(m.Key) != "market" {
		t.Fatalf("unexpected message envelope: %+v", m)
	}
	if string(m.Value) != `{"totalTrades":3}` {
		t.Fatalf("unexpected value %s", m.Value)
	}
}

func TestPublishMessagePropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newProducer(w, "gzip")

	if err := p.PublishMessage(context.Background(), "logs", "line"); err == nil {
		t.Fatalf("expected writer error")
	}
	if string(w.msgs[0].Value) != "line" {
		t.Fatalf("string payload should be sent raw, got %s", w.msgs[0].Value)
	}
}

func TestPublishBatchSkipsEmpty(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip")
	if err := p.PublishBatch(context.Background(), "t", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 0 {
		t.Fatalf("nothing should be written")
	}
}
