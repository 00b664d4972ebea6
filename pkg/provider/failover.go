package provider

import (
	"context"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
)

// UnavailableError reports that every endpoint of a role failed. It wraps
// the last endpoint's error; callers may retry later, since a subsequent
// attempt can reach a recovered provider.
type UnavailableError struct {
	Role     Role
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no %s endpoints configured", e.Role)
	}
	return fmt.Sprintf("all %d %s endpoints failed: %v", e.Attempts, e.Role, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

type AlgodOperation func(ctx context.Context, client *algod.Client, endpoint Endpoint) error

type IndexerOperation func(ctx context.Context, client *indexer.Client, endpoint Endpoint) error

// WithAlgod runs the operation against each algod endpoint in order until
// one succeeds. Failures are logged per endpoint and never propagate unless
// every endpoint is exhausted. There are no retries within an endpoint;
// fan-out is "try next", not "try again".
func (p *Pool) WithAlgod(ctx context.Context, operation AlgodOperation) error {
	return withFailover(ctx, p, RoleAlgod, p.algodEndpoints,
		Endpoint.AlgodClient,
		func(ctx context.Context, client *algod.Client, endpoint Endpoint) error {
			return operation(ctx, client, endpoint)
		})
}

// WithIndexer runs the operation against each indexer endpoint in order
// until one succeeds.
func (p *Pool) WithIndexer(ctx context.Context, operation IndexerOperation) error {
	return withFailover(ctx, p, RoleIndexer, p.indexerEndpoints,
		Endpoint.IndexerClient,
		func(ctx context.Context, client *indexer.Client, endpoint Endpoint) error {
			return operation(ctx, client, endpoint)
		})
}

func withFailover[C any](
	ctx context.Context,
	pool *Pool,
	role Role,
	endpoints []Endpoint,
	build func(Endpoint) (C, error),
	operation func(context.Context, C, Endpoint) error,
) error {
	if len(endpoints) == 0 {
		return &UnavailableError{Role: role}
	}

	var lastErr error
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		client, err := build(endpoint)
		if err == nil {
			err = operation(ctx, client, endpoint)
		}
		if err == nil {
			return nil
		}

		lastErr = err
		pool.logger.Warn().
			Str("role", string(role)).
			Str("endpoint", endpoint.URL).
			Err(err).
			Msg("endpoint failed, trying next")
	}

	return &UnavailableError{Role: role, Attempts: len(endpoints), Err: lastErr}
}
