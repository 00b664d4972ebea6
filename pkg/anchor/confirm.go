package anchor

import (
	"context"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/algocert/anchor-sdk-go/pkg/provider"
)

// indexerFallbackWindow bounds the indexer confirmation pass after the
// node-side wait times out. The indexer lags the node by a few rounds, so
// the id lookup is retried briefly rather than attempted once.
const indexerFallbackWindow = 10 * time.Second

// WaitForConfirmation polls until the transaction is confirmed or the
// window elapses. The poll advances one round at a time on a sticky session;
// a session failure mid-poll resets and re-elects with the remaining window.
// On timeout it falls back to an indexer lookup before returning a pending
// confirmation. A pool error on the transaction surfaces as
// *RejectedTransactionError.
func (c *Client) WaitForConfirmation(ctx context.Context, txID string, timeout time.Duration) (Confirmation, error) {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return Confirmation{}, ctx.Err()
		}

		client, endpoint, err := c.session.Acquire(ctx)
		if err != nil {
			// No healthy node at all; the indexer may still know the tx.
			break
		}

		status, err := client.Status().Do(ctx)
		if err != nil {
			c.logger.Warn().Str("endpoint", endpoint.URL).Err(err).Msg("status failed, re-electing session")
			c.session.Reset()
			continue
		}
		round := status.LastRound

		confirmed, rejected, pollErr := c.pollRounds(ctx, client, txID, round, deadline)
		if rejected != nil {
			return Confirmation{}, rejected
		}
		if pollErr != nil {
			c.logger.Warn().Str("endpoint", endpoint.URL).Err(pollErr).Msg("confirmation poll failed, re-electing session")
			c.session.Reset()
			continue
		}
		if confirmed > 0 {
			c.logger.Info().Str("txid", txID).Uint64("round", confirmed).Str("endpoint", endpoint.URL).
				Msg("transaction confirmed")
			return Confirmation{Round: confirmed, Path: PathNode}, nil
		}

		// Window elapsed without confirmation.
		break
	}

	if round, ok := c.confirmViaIndexer(ctx, txID); ok {
		c.logger.Info().Str("txid", txID).Uint64("round", round).Msg("transaction confirmed via indexer")
		return Confirmation{Round: round, Path: PathIndexer}, nil
	}

	c.logger.Warn().Str("txid", txID).Msg("transaction still pending after wait window")
	return Confirmation{Pending: true}, nil
}

// pollRounds runs the advance-by-one-round loop against a single bound
// client. It returns the confirming round (0 when the deadline passed), a
// rejection error when the pool reported one, or a transport error that
// should trigger session re-election.
func (c *Client) pollRounds(
	ctx context.Context,
	client *algod.Client,
	txID string,
	fromRound uint64,
	deadline time.Time,
) (uint64, error, error) {
	round := fromRound
	for time.Now().Before(deadline) {
		pendingInfo, _, err := client.PendingTransactionInformation(txID).Do(ctx)
		if err != nil {
			return 0, nil, err
		}
		if pendingInfo.PoolError != "" {
			return 0, &RejectedTransactionError{TxID: txID, Reason: pendingInfo.PoolError}, nil
		}
		if pendingInfo.ConfirmedRound > 0 {
			return pendingInfo.ConfirmedRound, nil, nil
		}

		round++
		if _, err := client.StatusAfterBlock(round).Do(ctx); err != nil {
			return 0, nil, err
		}
	}
	return 0, nil, nil
}

func (c *Client) confirmViaIndexer(ctx context.Context, txID string) (uint64, bool) {
	var confirmedRound uint64

	lookup := func() error {
		return c.pool.WithIndexer(ctx, func(ctx context.Context, client *indexer.Client, _ provider.Endpoint) error {
			response, err := client.LookupTransaction(txID).Do(ctx)
			if err != nil {
				return err
			}
			if response.Transaction.ConfirmedRound == 0 {
				return fmt.Errorf("transaction %s not yet indexed", txID)
			}
			confirmedRound = response.Transaction.ConfirmedRound
			return nil
		})
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = indexerFallbackWindow

	if err := backoff.Retry(lookup, backoff.WithContext(policy, ctx)); err != nil {
		return 0, false
	}
	return confirmedRound, true
}
