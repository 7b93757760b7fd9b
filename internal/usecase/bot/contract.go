package bot

import (
	"context"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// Mailer fetches unseen mail and sends replies.
type Mailer interface {
	FetchUnseen(ctx context.Context) ([]domain.Message, error)
	SendReply(ctx context.Context, orig domain.Message, body string) error
}

// MailStore persists emails in the general index and retrieves similar ones.
type MailStore interface {
	StoreEmail(ctx context.Context, msg domain.Message, vector []float32) error
	SearchSimilar(ctx context.Context, subjectVec, contentVec []float32) ([]map[string]string, error)
}

// MatchStore persists structured records and serves cross-namespace matches.
type MatchStore interface {
	StoreJob(ctx context.Context, job domain.Job) error
	StoreCandidate(ctx context.Context, cand domain.Candidate) error
	FindMatchingCandidates(ctx context.Context, jobDescription string, topK int) ([]domain.Match, error)
	FindMatchingJobs(ctx context.Context, candidateProfile string, topK int) ([]domain.Match, error)
}

// Classifier produces category verdicts and grounded replies.
type Classifier interface {
	Classify(ctx context.Context, msg domain.Message) (domain.Category, float64, error)
	GenerateReply(ctx context.Context, msg domain.Message, similar []map[string]string) (string, error)
}

// ReadyReporter gates processing on initialization.
type ReadyReporter interface {
	Ready() bool
}
