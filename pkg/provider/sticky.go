package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/rs/zerolog"
)

// ErrNoEndpointAvailable is returned by Session.Acquire when no algod
// endpoint passes the liveness probe.
var ErrNoEndpointAvailable = errors.New("no algod endpoint available")

// binding pairs a client with the endpoint it was built for. Bindings are
// replaced wholesale on failure, never mutated in place.
type binding struct {
	client   *algod.Client
	endpoint Endpoint
}

// Session holds one "current" algod connection reused across a multi-step
// operation. Confirmation polling issues many successive calls that must
// observe a consistent view of chain height from one provider; switching
// providers mid-poll would corrupt the advance-by-one-round loop, so the
// session re-elects only after a probe failure or an explicit Reset.
type Session struct {
	pool   *Pool
	logger zerolog.Logger

	mutex   sync.Mutex
	current *binding
}

// NewSession creates an unbound session over the pool's algod endpoints.
func NewSession(pool *Pool) *Session {
	return &Session{pool: pool, logger: pool.logger}
}

// Acquire returns the bound client if its liveness probe still passes,
// otherwise probes all algod endpoints concurrently and binds to the first
// that responds. Returns ErrNoEndpointAvailable when every probe fails.
func (s *Session) Acquire(ctx context.Context) (*algod.Client, Endpoint, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current != nil {
		if err := s.current.client.HealthCheck().Do(ctx); err == nil {
			return s.current.client, s.current.endpoint, nil
		} else {
			s.logger.Warn().
				Str("endpoint", s.current.endpoint.URL).
				Err(err).
				Msg("sticky endpoint went down")
			s.current = nil
		}
	}

	elected, err := electBinding(ctx, s.pool.Endpoints(RoleAlgod), s.logger)
	if err != nil {
		return nil, Endpoint{}, err
	}

	s.current = elected
	s.logger.Info().Str("endpoint", elected.endpoint.URL).Msg("sticky session bound")
	return elected.client, elected.endpoint, nil
}

// Reset forces the session back to the unbound state so the next Acquire
// re-elects an endpoint. Call it after a mid-operation failure.
func (s *Session) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.current = nil
}

// Current reports the bound endpoint, if any.
func (s *Session) Current() (Endpoint, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.current == nil {
		return Endpoint{}, false
	}
	return s.current.endpoint, true
}

// electBinding probes every candidate at once and keeps the first to pass
// the liveness check. Probing concurrently only bounds election latency;
// use of the elected binding is sequential.
func electBinding(ctx context.Context, endpoints []Endpoint, logger zerolog.Logger) (*binding, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpointAvailable
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type probeResult struct {
		bound *binding
		err   error
		url   string
	}
	results := make(chan probeResult, len(endpoints))

	for _, endpoint := range endpoints {
		go func(endpoint Endpoint) {
			client, err := endpoint.AlgodClient()
			if err == nil {
				err = client.HealthCheck().Do(probeCtx)
			}
			if err != nil {
				results <- probeResult{err: err, url: endpoint.URL}
				return
			}
			results <- probeResult{bound: &binding{client: client, endpoint: endpoint}, url: endpoint.URL}
		}(endpoint)
	}

	var lastErr error
	for range endpoints {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.bound != nil {
				return result.bound, nil
			}
			lastErr = result.err
			logger.Warn().Str("endpoint", result.url).Err(result.err).Msg("endpoint not available")
		}
	}

	if lastErr != nil {
		return nil, errors.Join(ErrNoEndpointAvailable, lastErr)
	}
	return nil, ErrNoEndpointAvailable
}
