package bot

import (
	"context"
	"sync"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// mockMailer serves canned unseen messages and records sent replies.
type mockMailer struct {
	mu       sync.Mutex
	unseen   []domain.Message
	fetchErr error
	sendErrs []error // consumed per send attempt
	sent     []sentReply
}

type sentReply struct {
	orig domain.Message
	body string
}

func (m *mockMailer) FetchUnseen(context.Context) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	msgs := m.unseen
	m.unseen = nil
	return msgs, nil
}

func (m *mockMailer) SendReply(_ context.Context, orig domain.Message, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sendErrs) > 0 {
		err := m.sendErrs[0]
		m.sendErrs = m.sendErrs[1:]
		if err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentReply{orig: orig, body: body})
	return nil
}

func (m *mockMailer) sentReplies() []sentReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentReply(nil), m.sent...)
}

// mockEmbedder returns a fixed-dimension vector per text.
type mockEmbedder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}, TotalTokens: 4}, nil
}

// mockMailStore records stored emails and serves canned similar results.
type mockMailStore struct {
	stored   []domain.Message
	vectors  [][]float32
	similar  []map[string]string
	storeErr error
	queryErr error
}

func (m *mockMailStore) StoreEmail(_ context.Context, msg domain.Message, vector []float32) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored = append(m.stored, msg)
	m.vectors = append(m.vectors, vector)
	return nil
}

func (m *mockMailStore) SearchSimilar(context.Context, []float32, []float32) ([]map[string]string, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.similar, nil
}

// mockMatchStore records stored entities and serves canned matches.
type mockMatchStore struct {
	jobs       []domain.Job
	candidates []domain.Candidate

	candidateMatches []domain.Match
	jobMatches       []domain.Match
	storeErr         error
	findErr          error
}

func (m *mockMatchStore) StoreJob(_ context.Context, job domain.Job) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockMatchStore) StoreCandidate(_ context.Context, cand domain.Candidate) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.candidates = append(m.candidates, cand)
	return nil
}

func (m *mockMatchStore) FindMatchingCandidates(context.Context, string, int) ([]domain.Match, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.candidateMatches, nil
}

func (m *mockMatchStore) FindMatchingJobs(context.Context, string, int) ([]domain.Match, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.jobMatches, nil
}

// mockClassifier returns per-message verdicts keyed by message id.
type mockClassifier struct {
	verdicts map[string]verdict
	reply    string
	replyErr error

	replyCalls []replyCall
}

type verdict struct {
	category   domain.Category
	confidence float64
	err        error
}

type replyCall struct {
	msg     domain.Message
	similar []map[string]string
}

func (m *mockClassifier) Classify(_ context.Context, msg domain.Message) (domain.Category, float64, error) {
	v, ok := m.verdicts[msg.MessageID]
	if !ok {
		return domain.CategoryOther, 1, nil
	}
	return v.category, v.confidence, v.err
}

func (m *mockClassifier) GenerateReply(_ context.Context, msg domain.Message, similar []map[string]string) (string, error) {
	m.replyCalls = append(m.replyCalls, replyCall{msg: msg, similar: similar})
	if m.replyErr != nil {
		return "", m.replyErr
	}
	if m.reply == "" {
		return "generated reply", nil
	}
	return m.reply, nil
}

// alwaysReady satisfies ReadyReporter.
type alwaysReady struct{ ready bool }

func (a alwaysReady) Ready() bool { return a.ready }
