// Package bot orchestrates the processing pipeline: fetch unseen mail,
// embed, store, classify, and answer each message.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/domain"
	"github.com/kailas-cloud/mailbot/internal/metrics"
	"github.com/kailas-cloud/mailbot/internal/retry"
)

// DefaultConfidenceThreshold is the minimum classification confidence; below
// it the verdict is discarded and the message handled as OTHER.
const DefaultConfidenceThreshold = 0.7

// Service is the pipeline orchestrator.
type Service struct {
	mailer     Mailer
	embed      domain.Embedder
	mail       MailStore
	match      MatchStore
	classifier Classifier
	ready      ReadyReporter
	logger     *zap.Logger
	retry      retry.Policy

	subjectWeight float64
	contentWeight float64
	threshold     float64

	cycleMu sync.Mutex
	poke    chan struct{}
}

// New creates the orchestrator with default weights and threshold.
func New(mailer Mailer, embed domain.Embedder, mail MailStore, match MatchStore,
	classifier Classifier, ready ReadyReporter, logger *zap.Logger) *Service {
	return &Service{
		mailer:        mailer,
		embed:         embed,
		mail:          mail,
		match:         match,
		classifier:    classifier,
		ready:         ready,
		logger:        logger,
		retry:         retry.Default,
		subjectWeight: 0.4,
		contentWeight: 0.6,
		threshold:     DefaultConfidenceThreshold,
		poke:          make(chan struct{}, 1),
	}
}

// WithWeights overrides the subject/content combination weights.
func (s *Service) WithWeights(subject, content float64) *Service {
	if domain.ValidWeights(subject, content) {
		s.subjectWeight = subject
		s.contentWeight = content
	}
	return s
}

// WithThreshold overrides the confidence gate.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// WithRetry overrides the send retry policy.
func (s *Service) WithRetry(p retry.Policy) *Service {
	s.retry = p
	return s
}

// ProcessNewMessages runs one processing cycle. A failing message is logged
// and skipped; it never stops the cycle. Overlapping cycles are collapsed:
// if one is already running the call returns immediately.
func (s *Service) ProcessNewMessages(ctx context.Context) error {
	if !s.ready.Ready() {
		return domain.ErrNotInitialized
	}

	if !s.cycleMu.TryLock() {
		return nil
	}
	defer s.cycleMu.Unlock()

	messages, err := s.mailer.FetchUnseen(ctx)
	if err != nil {
		return fmt.Errorf("fetch unseen: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}
	s.logger.Info("processing cycle", zap.Int("messages", len(messages)))

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processOne(ctx, msg); err != nil {
			s.logger.Error("message processing failed",
				zap.String("message_id", msg.MessageID),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) processOne(ctx context.Context, msg domain.Message) error {
	subjectRes, err := s.embed.Embed(ctx, msg.Subject)
	if err != nil {
		s.countProcessed("", "error")
		return fmt.Errorf("embed subject: %w", err)
	}
	contentRes, err := s.embed.Embed(ctx, msg.Content)
	if err != nil {
		s.countProcessed("", "error")
		return fmt.Errorf("embed content: %w", err)
	}

	combined, err := domain.CombineWeighted(
		subjectRes.Embedding, contentRes.Embedding, s.subjectWeight, s.contentWeight)
	if err != nil {
		s.countProcessed("", "error")
		return fmt.Errorf("combine embeddings: %w", err)
	}

	if err := s.mail.StoreEmail(ctx, msg, combined); err != nil {
		s.countProcessed("", "error")
		return err
	}

	category := s.classify(ctx, msg)

	var reply string
	switch category {
	case domain.CategoryJob:
		reply, err = s.handleJob(ctx, msg)
	case domain.CategoryCandidate:
		reply, err = s.handleCandidate(ctx, msg)
	default:
		reply, err = s.handleOther(ctx, msg, subjectRes.Embedding, contentRes.Embedding)
	}
	if err != nil {
		s.countProcessed(string(category), "error")
		return err
	}

	err = s.retry.Do(ctx, "send reply", func(ctx context.Context) error {
		return s.mailer.SendReply(ctx, msg, reply)
	})
	if err != nil {
		s.countProcessed(string(category), "error")
		return err
	}

	s.countProcessed(string(category), "success")
	s.logger.Info("message processed",
		zap.String("message_id", msg.MessageID),
		zap.String("category", string(category)))
	return nil
}

// classify runs the verdict and applies the confidence gate. An unparsable
// verdict or a provider failure degrades to OTHER instead of failing the
// message: the email is already stored and deserves at least a generic reply.
func (s *Service) classify(ctx context.Context, msg domain.Message) domain.Category {
	category, confidence, err := s.classifier.Classify(ctx, msg)
	if err != nil {
		if !errors.Is(err, domain.ErrUnparsableVerdict) {
			s.logger.Warn("classification failed, treating as other",
				zap.String("message_id", msg.MessageID), zap.Error(err))
		}
		return domain.CategoryOther
	}

	if confidence < s.threshold {
		s.logger.Info("low confidence, treating as other",
			zap.String("message_id", msg.MessageID),
			zap.String("raw_category", string(category)),
			zap.Float64("confidence", confidence))
		return domain.CategoryOther
	}
	return category
}

// handleJob stores the posting and answers with matching candidates.
func (s *Service) handleJob(ctx context.Context, msg domain.Message) (string, error) {
	job := jobFromMessage(msg)
	if err := s.match.StoreJob(ctx, job); err != nil {
		return "", err
	}

	candidates, err := s.match.FindMatchingCandidates(ctx, msg.Content, 0)
	if err != nil {
		return "", err
	}
	return candidateListReply(candidates), nil
}

// handleCandidate stores the profile and answers with matching jobs.
func (s *Service) handleCandidate(ctx context.Context, msg domain.Message) (string, error) {
	cand := candidateFromMessage(msg)
	if err := s.match.StoreCandidate(ctx, cand); err != nil {
		return "", err
	}

	jobs, err := s.match.FindMatchingJobs(ctx, msg.Content, 0)
	if err != nil {
		return "", err
	}
	return jobListReply(jobs), nil
}

// handleOther retrieves similar prior mail and generates a grounded reply.
// The subject and content vectors from the store step are reused; the text
// has not changed, so re-embedding would buy nothing.
func (s *Service) handleOther(ctx context.Context, msg domain.Message, subjectVec, contentVec []float32) (string, error) {
	similar, err := s.mail.SearchSimilar(ctx, subjectVec, contentVec)
	if err != nil {
		return "", err
	}
	return s.classifier.GenerateReply(ctx, msg, similar)
}

func (s *Service) countProcessed(category, status string) {
	if category == "" {
		category = "unknown"
	}
	metrics.MessagesProcessedTotal.WithLabelValues(category, status).Inc()
}

// Run polls for new messages every interval until the context is canceled.
// TriggerNow wakes the loop early. One cycle runs immediately on start.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll loop stopped")
			return
		case <-ticker.C:
			s.cycle(ctx)
		case <-s.poke:
			s.cycle(ctx)
		}
	}
}

// TriggerNow requests an immediate cycle. Duplicate triggers while one is
// pending collapse into a single cycle.
func (s *Service) TriggerNow() {
	select {
	case s.poke <- struct{}{}:
	default:
	}
}

func (s *Service) cycle(ctx context.Context) {
	if err := s.ProcessNewMessages(ctx); err != nil {
		if errors.Is(err, domain.ErrNotInitialized) {
			s.logger.Debug("skipping cycle, not initialized")
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("processing cycle failed", zap.Error(err))
	}
}
