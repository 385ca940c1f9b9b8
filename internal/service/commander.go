package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/liftops/lift-telemetry-service/internal/observability"
)

// BrokerPublisher is the slice of the broker client the command path needs.
// The concrete client lives in the mqtt adapter; the binding happens in the
// fx graph.
type BrokerPublisher interface {
	Publish(ctx context.Context, topic, payload string) error
}

// Commander forwards operator commands to the controller's command topic.
type Commander interface {
	// Send publishes payload to topic, or to the configured default when
	// topic is empty. The outcome is data, not an error: a failed publish
	// comes back as a result with Status "failed".
	Send(ctx context.Context, topic, payload string) CommandResult
}

// CommandResult reports the outcome of one publish attempt.
type CommandResult struct {
	Status  string `json:"status"`
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

const (
	CommandSent   = "sent"
	CommandFailed = "failed"
)

type CommandService struct {
	pub          BrokerPublisher
	defaultTopic string
	metrics      *observability.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
}

func NewCommandService(pub BrokerPublisher, defaultTopic string, metrics *observability.Metrics, logger *slog.Logger) *CommandService {
	return &CommandService{
		pub:          pub,
		defaultTopic: defaultTopic,
		metrics:      metrics,
		logger:       logger,
		tracer:       otel.Tracer("lift-telemetry-service"),
	}
}

func (s *CommandService) Send(ctx context.Context, topic, payload string) CommandResult {
	ctx, span := s.tracer.Start(ctx, "commander.Send")
	defer span.End()

	if topic == "" {
		topic = s.defaultTopic
	}
	res := CommandResult{Status: CommandSent, Topic: topic, Payload: payload}
	if err := s.pub.Publish(ctx, topic, payload); err != nil {
		s.logger.Error("command publish failed",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		res.Status = CommandFailed
	}
	s.metrics.CommandPublished(ctx, res.Status == CommandSent)
	return res
}

var _ Commander = (*CommandService)(nil)
