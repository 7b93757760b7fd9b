package domain

import (
	"context"
	"fmt"
	"math"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// weightEpsilon bounds the float error allowed when checking that the
// subject/content weights sum to 1.0.
const weightEpsilon = 1e-9

// ValidWeights reports whether a subject/content weight pair is usable:
// both non-negative and summing to 1.0.
func ValidWeights(subjectWeight, contentWeight float64) bool {
	if subjectWeight < 0 || contentWeight < 0 {
		return false
	}
	return math.Abs(subjectWeight+contentWeight-1.0) < weightEpsilon
}

// CombineWeighted forms the combined embedding used for both storage and
// querying: combined[i] = subjectWeight*subject[i] + contentWeight*content[i].
// The weights are fixed business policy, not magnitude-derived, so the result
// is deliberately not renormalized. The output dimension always equals the
// input dimension.
func CombineWeighted(subject, content []float32, subjectWeight, contentWeight float64) ([]float32, error) {
	if len(subject) != len(content) {
		return nil, fmt.Errorf(
			"subject dim %d != content dim %d: %w",
			len(subject), len(content), ErrVectorDimMismatch,
		)
	}
	if !ValidWeights(subjectWeight, contentWeight) {
		return nil, fmt.Errorf("weights %v/%v must be non-negative and sum to 1.0", subjectWeight, contentWeight)
	}

	combined := make([]float32, len(subject))
	for i := range subject {
		combined[i] = float32(subjectWeight)*subject[i] + float32(contentWeight)*content[i]
	}
	return combined, nil
}
