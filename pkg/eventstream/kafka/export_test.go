package kafka

import (
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

type MessageWriter = messageWriter

func NewPublisherWithWriter(w MessageWriter, topic string) *Publisher {
	return newPublisher(w, topic, slog.New(slog.DiscardHandler))
}

// Writer returns the underlying kafka writer when the publisher built one.
func (p *Publisher) Writer() *kafkago.Writer {
	w, _ := p.writer.(*kafkago.Writer)
	return w
}
