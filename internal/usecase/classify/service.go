// Package classify turns completions into typed verdicts: message category
// with confidence, message type, and context-grounded reply text.
package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// Service runs the three LLM-backed operations of the pipeline.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates a classification service.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Classify asks for a category verdict on the message. The completion must
// parse as "category:confidence"; the caller decides what an unparsable
// verdict means for the pipeline.
func (s *Service) Classify(ctx context.Context, msg domain.Message) (domain.Category, float64, error) {
	prompt := fmt.Sprintf(classifyPrompt, msg.Subject, msg.Content)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}

	cat, conf, err := domain.ParseVerdict(raw)
	if err != nil {
		s.logger.Warn("unparsable classification verdict",
			zap.String("message_id", msg.MessageID), zap.String("raw", raw))
		return "", 0, err
	}
	return cat, conf, nil
}

// DetectType determines the reply framing for the message.
func (s *Service) DetectType(ctx context.Context, msg domain.Message) (domain.MessageType, error) {
	prompt := fmt.Sprintf(detectTypePrompt, msg.Subject, msg.Content)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	return domain.ParseMessageType(raw)
}

// GenerateReply produces reply text for msg grounded in similar prior
// messages. An undetectable type falls back to general framing rather than
// failing the reply.
func (s *Service) GenerateReply(ctx context.Context, msg domain.Message, similar []map[string]string) (string, error) {
	msgType, err := s.DetectType(ctx, msg)
	if err != nil {
		s.logger.Warn("type detection failed, using general framing",
			zap.String("message_id", msg.MessageID), zap.Error(err))
		msgType = domain.TypeGeneral
	}

	prompt := fmt.Sprintf(replyPrompt,
		msg.Subject, msg.Content, formatSimilar(similar), framing[msgType])

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	s.logger.Debug("reply generated",
		zap.String("message_id", msg.MessageID),
		zap.String("type", string(msgType)),
		zap.Int("context_messages", len(similar)))
	return reply, nil
}
