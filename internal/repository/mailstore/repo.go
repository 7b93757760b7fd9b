// Package mailstore stores email records in the general vector index and
// runs the weighted similarity search over them.
package mailstore

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// index is the consumer interface for the underlying vector index.
type index interface {
	Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error)
}

// Repo implements email storage and weighted retrieval.
type Repo struct {
	index     index
	namespace string

	subjectWeight float64
	contentWeight float64
	topK          int
}

// New creates a mail store over the given index and namespace.
func New(idx index, namespace string) *Repo {
	return &Repo{
		index:         idx,
		namespace:     namespace,
		subjectWeight: 0.4,
		contentWeight: 0.6,
		topK:          3,
	}
}

// WithWeights overrides the subject/content combination weights.
func (r *Repo) WithWeights(subject, content float64) *Repo {
	if domain.ValidWeights(subject, content) {
		r.subjectWeight = subject
		r.contentWeight = content
	}
	return r
}

// WithTopK overrides the result count for similarity searches.
func (r *Repo) WithTopK(k int) *Repo {
	if k > 0 {
		r.topK = k
	}
	return r
}

// StoreEmail upserts the message under its message id with the combined
// embedding. Re-storing the same id overwrites the previous record.
func (r *Repo) StoreEmail(ctx context.Context, msg domain.Message, vector []float32) error {
	if msg.MessageID == "" {
		return fmt.Errorf("message id is required")
	}
	if err := r.index.Upsert(ctx, r.namespace, msg.MessageID, vector, msg.Metadata()); err != nil {
		return fmt.Errorf("store email %s: %w", msg.MessageID, err)
	}
	return nil
}

// SearchSimilar combines the subject and content embeddings with the
// configured weights, over-fetches 2K candidates to survive deduplication
// loss, and returns the metadata of the first K distinct non-empty matches
// in descending score order. An empty index yields an empty result.
func (r *Repo) SearchSimilar(ctx context.Context, subjectVec, contentVec []float32) ([]map[string]string, error) {
	combined, err := domain.CombineWeighted(subjectVec, contentVec, r.subjectWeight, r.contentWeight)
	if err != nil {
		return nil, fmt.Errorf("combine embeddings: %w", err)
	}

	matches, err := r.index.Query(ctx, r.namespace, combined, r.topK*2)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	seen := make(map[uint64]struct{}, len(matches))
	unique := make([]map[string]string, 0, r.topK)

	for _, m := range matches {
		content := strings.TrimSpace(m.Fields[domain.FieldContent])
		if content == "" {
			continue
		}
		h := contentHash(content)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}

		unique = append(unique, m.Fields)
		if len(unique) >= r.topK {
			break
		}
	}

	return unique, nil
}

func contentHash(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return h.Sum64()
}
