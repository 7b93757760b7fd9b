// Package matchstore stores structured job and candidate records in the
// specialized match index and retrieves cross-namespace matches.
//
// Matching skills to requirements is a different relevance task than
// email-to-email similarity, so these records live in their own index with
// "jobs" and "candidates" namespaces instead of sharing the mail pool.
package matchstore

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// Namespaces of the match index.
const (
	NamespaceJobs       = "jobs"
	NamespaceCandidates = "candidates"
)

// DefaultTopK is the match count when the caller does not specify one.
const DefaultTopK = 3

// index is the consumer interface for the underlying vector index.
type index interface {
	Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error)
}

// Repo implements job/candidate storage and matching.
type Repo struct {
	index index
	embed domain.Embedder
}

// New creates a match store.
func New(idx index, embed domain.Embedder) *Repo {
	return &Repo{index: idx, embed: embed}
}

// StoreJob embeds the job's descriptive text and upserts it into the jobs
// namespace under a type-prefixed id.
func (r *Repo) StoreJob(ctx context.Context, job domain.Job) error {
	res, err := r.embed.Embed(ctx, job.DescriptiveText())
	if err != nil {
		return fmt.Errorf("embed job %s: %w", job.ID, err)
	}
	if err := r.index.Upsert(ctx, NamespaceJobs, job.RecordID(), res.Embedding, job.Metadata()); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

// StoreCandidate embeds the candidate's descriptive text and upserts it into
// the candidates namespace under a type-prefixed id.
func (r *Repo) StoreCandidate(ctx context.Context, cand domain.Candidate) error {
	res, err := r.embed.Embed(ctx, cand.DescriptiveText())
	if err != nil {
		return fmt.Errorf("embed candidate %s: %w", cand.ID, err)
	}
	if err := r.index.Upsert(ctx, NamespaceCandidates, cand.RecordID(), res.Embedding, cand.Metadata()); err != nil {
		return fmt.Errorf("store candidate %s: %w", cand.ID, err)
	}
	return nil
}

// FindMatchingCandidates embeds a job description and queries the candidates
// namespace. Structured records are distinct by id, so no deduplication.
func (r *Repo) FindMatchingCandidates(ctx context.Context, jobDescription string, topK int) ([]domain.Match, error) {
	return r.findMatches(ctx, NamespaceCandidates, jobDescription, topK)
}

// FindMatchingJobs embeds a candidate profile and queries the jobs namespace.
func (r *Repo) FindMatchingJobs(ctx context.Context, candidateProfile string, topK int) ([]domain.Match, error) {
	return r.findMatches(ctx, NamespaceJobs, candidateProfile, topK)
}

func (r *Repo) findMatches(ctx context.Context, namespace, text string, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	res, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.index.Query(ctx, namespace, res.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", namespace, err)
	}
	return matches, nil
}
