package eventsvc

import (
	"context"

	"github.com/trezcool/lumina/core"
)

// LogPublisher only logs events; used when no broker is configured.
type LogPublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.logger.Debug("event "+routingKey, map[string]interface{}{"routing_key": routingKey, "payload": payload})
	return nil
}

func (p *LogPublisher) Close() error { return nil }
