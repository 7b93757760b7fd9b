// Package vectorindex provides a namespaced vector index over the db store:
// ensure-ready initialization, overwrite-by-id upserts, and top-k queries.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/db"
	"github.com/kailas-cloud/mailbot/internal/domain"
	"github.com/kailas-cloud/mailbot/internal/metrics"
	"github.com/kailas-cloud/mailbot/internal/retry"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Reserved hash field names; stripped from query results.
const (
	fieldVector    = "vector"
	fieldNamespace = "namespace"
)

// Index is a named, dimensioned vector index partitioned into namespaces.
type Index struct {
	store  store
	name   string
	dim    int
	metric db.DistanceMetric
	logger *zap.Logger

	retry        retry.Policy
	pollInterval time.Duration
	readyTimeout time.Duration

	hnswM           int
	hnswEFConstruct int
}

// New creates an index handle. The remote index itself is created lazily by
// EnsureReady.
func New(s store, name string, dim int, metric db.DistanceMetric, logger *zap.Logger) *Index {
	return &Index{
		store:        s,
		name:         name,
		dim:          dim,
		metric:       metric,
		logger:       logger,
		retry:        retry.Default,
		pollInterval: time.Second,
		readyTimeout: 60 * time.Second,
	}
}

// WithRetry configures the retry policy for create and upsert calls.
func (i *Index) WithRetry(p retry.Policy) *Index {
	if p.Attempts > 0 {
		i.retry = p
	}
	return i
}

// WithReadiness configures the readiness poll interval and timeout.
func (i *Index) WithReadiness(pollInterval, timeout time.Duration) *Index {
	if pollInterval > 0 {
		i.pollInterval = pollInterval
	}
	if timeout > 0 {
		i.readyTimeout = timeout
	}
	return i
}

// WithHNSW configures the HNSW build parameters for index creation.
func (i *Index) WithHNSW(m, efConstruct int) *Index {
	if m > 0 {
		i.hnswM = m
	}
	if efConstruct > 0 {
		i.hnswEFConstruct = efConstruct
	}
	return i
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// EnsureReady is idempotent: if the index exists it only verifies liveness;
// otherwise it creates the index and polls until ready or the configured
// timeout elapses, failing with domain.ErrInitTimeout.
func (i *Index) EnsureReady(ctx context.Context) error {
	exists, err := i.store.IndexExists(ctx, i.name)
	if err != nil {
		return fmt.Errorf("check index %s: %w: %v", i.name, domain.ErrStoreUnavailable, err)
	}
	if exists {
		i.logger.Info("index already exists, connecting", zap.String("index", i.name))
		if err := i.store.Ping(ctx); err != nil {
			return fmt.Errorf("liveness check %s: %w: %v", i.name, domain.ErrStoreUnavailable, err)
		}
		return nil
	}

	i.logger.Info("creating index",
		zap.String("index", i.name),
		zap.Int("dimension", i.dim),
		zap.String("metric", string(i.metric)),
	)

	def := i.definition()
	err = i.retry.Do(ctx, "create index "+i.name, func(ctx context.Context) error {
		createErr := i.store.CreateIndex(ctx, def)
		if errors.Is(createErr, db.ErrIndexExists) {
			// Lost a creation race; the poll below still verifies readiness.
			return nil
		}
		return createErr
	})
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues(i.name, "create", "error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	metrics.IndexOperationsTotal.WithLabelValues(i.name, "create", "success").Inc()

	if err := i.waitUntilReady(ctx); err != nil {
		return err
	}

	i.logger.Info("index created", zap.String("index", i.name))
	return nil
}

// waitUntilReady polls the index at a fixed interval. Managed deployments can
// report the index before it is queryable, so a fresh index is not trusted
// until a describe and a liveness probe both succeed.
func (i *Index) waitUntilReady(ctx context.Context) error {
	deadline := time.NewTimer(i.readyTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("index %s: %w: %v", i.name, domain.ErrInitTimeout, ctx.Err())
		case <-deadline.C:
			return fmt.Errorf("index %s not ready after %s: %w", i.name, i.readyTimeout, domain.ErrInitTimeout)
		case <-ticker.C:
			exists, err := i.store.IndexExists(ctx, i.name)
			if err != nil || !exists {
				continue
			}
			if err := i.store.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Recreate drops the index together with its records and builds it again.
// A missing index is not an error.
func (i *Index) Recreate(ctx context.Context) error {
	err := i.store.DropIndex(ctx, i.name, true)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w: %v", i.name, domain.ErrStoreUnavailable, err)
	}
	if err == nil {
		i.logger.Info("dropped existing index", zap.String("index", i.name))
	}
	return i.EnsureReady(ctx)
}

// Upsert writes a record, overwriting any previous record with the same id
// within the namespace. Transport failures are retried per the policy and
// surface as domain.ErrStoreUnavailable.
func (i *Index) Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error {
	if len(vector) != i.dim {
		return fmt.Errorf(
			"index %s expects dim %d, got %d: %w",
			i.name, i.dim, len(vector), domain.ErrVectorDimMismatch,
		)
	}

	fields := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		fields[k] = v
	}
	fields[fieldNamespace] = namespace
	fields[fieldVector] = db.VectorToBytes(vector)

	key := i.recordKey(namespace, id)
	err := i.retry.Do(ctx, "upsert "+key, func(ctx context.Context) error {
		return i.store.HSet(ctx, key, fields)
	})
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues(i.name, "upsert", "error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	metrics.IndexOperationsTotal.WithLabelValues(i.name, "upsert", "success").Inc()
	return nil
}

// Query returns up to topK matches from the namespace, ordered by descending
// similarity. Asking for more results than stored records is not an error.
func (i *Index) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	if len(vector) != i.dim {
		return nil, fmt.Errorf(
			"index %s expects dim %d, got %d: %w",
			i.name, i.dim, len(vector), domain.ErrVectorDimMismatch,
		)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	res, err := i.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: i.name,
		Namespace: namespace,
		Vector:    vector,
		K:         topK,
	})
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues(i.name, "query", "error").Inc()
		return nil, fmt.Errorf("query %s: %w: %v", i.name, domain.ErrStoreUnavailable, err)
	}
	metrics.IndexOperationsTotal.WithLabelValues(i.name, "query", "success").Inc()

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		fields := make(map[string]string, len(e.Fields))
		for k, v := range e.Fields {
			if k == fieldVector || k == fieldNamespace {
				continue
			}
			fields[k] = v
		}
		matches = append(matches, domain.Match{
			ID:     i.recordID(namespace, e.Key),
			Score:  e.Score,
			Fields: fields,
		})
	}

	return matches, nil
}

// definition builds the FT schema: a namespace TAG field plus the HNSW
// vector field. Metadata lives in the same hash unindexed.
func (i *Index) definition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     i.name,
		Prefixes: []string{i.name + ":"},
		Fields: []db.IndexField{
			{Name: fieldNamespace, Type: db.IndexFieldTag},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorDim:         i.dim,
				VectorDistance:    i.metric,
				VectorM:           i.hnswM,
				VectorEFConstruct: i.hnswEFConstruct,
			},
		},
	}
}

func (i *Index) recordKey(namespace, id string) string {
	return i.name + ":" + namespace + ":" + id
}

// recordID strips the key prefix back off a search hit.
func (i *Index) recordID(namespace, key string) string {
	prefix := i.name + ":" + namespace + ":"
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}
