package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/rs/zerolog"

	"github.com/algocert/anchor-sdk-go/pkg/index"
	"github.com/algocert/anchor-sdk-go/pkg/note"
	"github.com/algocert/anchor-sdk-go/pkg/provider"
)

// Client verifies fingerprints against the ledger.
type Client struct {
	pool   *provider.Pool
	index  *index.Index
	logger zerolog.Logger
}

// NewClient creates a verification client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Pool == nil {
		return nil, fmt.Errorf("provider pool is required")
	}
	return &Client{
		pool:   config.Pool,
		index:  config.Index,
		logger: config.Logger,
	}, nil
}

// Verify resolves whether the given SHA-256 fingerprint was anchored. The
// result is non-nil on every return; the error is non-nil only for invalid
// input or when providers were exhausted before an answer was possible.
func (c *Client) Verify(ctx context.Context, fingerprintHex string, opts ...Option) (*Result, error) {
	if err := note.ValidateFingerprint(fingerprintHex); err != nil {
		return &Result{Reason: ReasonNotFound}, err
	}
	fingerprint := note.NormalizeFingerprint(fingerprintHex)
	resolved := resolveOptions(opts)

	if c.index != nil {
		result, decided := c.verifyViaIndex(ctx, fingerprint)
		if decided {
			return result, nil
		}
	}

	return c.verifyViaSearch(ctx, fingerprint, resolved)
}

// VerifyFile hashes the file at path and verifies the resulting
// fingerprint.
func (c *Client) VerifyFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	fingerprint, err := FingerprintFile(path)
	if err != nil {
		return &Result{Reason: ReasonNotFound}, err
	}
	return c.Verify(ctx, fingerprint, opts...)
}

// Fingerprint computes the hex SHA-256 fingerprint of a document stream.
func Fingerprint(reader io.Reader) (string, error) {
	digest := sha256.New()
	if _, err := io.Copy(digest, reader); err != nil {
		return "", fmt.Errorf("failed to hash document: %w", err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// FingerprintFile computes the hex SHA-256 fingerprint of a file.
func FingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()
	return Fingerprint(file)
}

// verifyViaIndex is the fast path. The second return reports whether the
// index settled the question; false sends the caller to the slow path.
func (c *Client) verifyViaIndex(ctx context.Context, fingerprint string) (*Result, bool) {
	entry, err := c.index.Lookup(ctx, fingerprint)
	if err != nil {
		c.logger.Warn().Str("fingerprint", fingerprint).Err(err).Msg("index lookup failed, falling back to ledger search")
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if entry.TxID == "" {
		return &Result{Reason: ReasonUnconfirmed, Entry: entry}, true
	}

	transaction, found, err := c.fetchTransaction(ctx, entry.TxID)
	if err != nil {
		c.logger.Warn().Str("txid", entry.TxID).Err(err).Msg("indexed transaction not retrievable, falling back to ledger search")
		return nil, false
	}
	if !found {
		return &Result{Reason: ReasonUnconfirmed, Entry: entry, TxID: entry.TxID}, true
	}

	record := note.Decode(transaction.Note, transaction.Sender)
	if record == nil || record.FingerprintHex != fingerprint {
		return &Result{
			Reason:         ReasonMismatch,
			Record:         record,
			TxID:           entry.TxID,
			ConfirmedRound: transaction.ConfirmedRound,
			Entry:          entry,
		}, true
	}

	return &Result{
		Matches:        true,
		Reason:         ReasonConfirmed,
		Record:         record,
		TxID:           entry.TxID,
		ConfirmedRound: transaction.ConfirmedRound,
		Entry:          entry,
	}, true
}

// verifyViaSearch is the slow path: a note-prefix search over a bounded
// round window, newest format first.
func (c *Client) verifyViaSearch(ctx context.Context, fingerprint string, resolved options) (*Result, error) {
	currentRound, err := c.currentRound(ctx)
	if err != nil {
		return &Result{Reason: ReasonProviderError}, err
	}

	minRound := uint64(0)
	if rounds := windowRounds(resolved.window); rounds < currentRound {
		minRound = currentRound - rounds
	}

	for _, version := range []note.Version{note.VersionV2, note.VersionV1} {
		transactions, err := c.searchByPrefix(ctx, note.FingerprintPrefix(version, fingerprint), minRound, resolved.walletHint)
		if err != nil {
			return &Result{Reason: ReasonProviderError}, err
		}

		for _, transaction := range transactions {
			record := note.Decode(transaction.Note, transaction.Sender)
			if record == nil || record.FingerprintHex != fingerprint {
				continue
			}
			return &Result{
				Matches:        true,
				Reason:         ReasonConfirmed,
				Record:         record,
				TxID:           transaction.Id,
				ConfirmedRound: transaction.ConfirmedRound,
			}, nil
		}
	}

	return &Result{Reason: ReasonNotFound}, nil
}

func (c *Client) currentRound(ctx context.Context) (uint64, error) {
	var round uint64
	err := c.pool.WithIndexer(ctx, func(ctx context.Context, client *indexer.Client, endpoint provider.Endpoint) error {
		health, err := client.HealthCheck().Do(ctx)
		if err != nil {
			return err
		}
		round = health.Round
		return nil
	})
	return round, err
}

func (c *Client) searchByPrefix(ctx context.Context, prefix []byte, minRound uint64, walletHint string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := c.pool.WithIndexer(ctx, func(ctx context.Context, client *indexer.Client, endpoint provider.Endpoint) error {
		query := client.SearchForTransactions().
			NotePrefix(prefix).
			MinRound(minRound).
			Limit(searchPageLimit)
		if walletHint != "" {
			query = query.AddressString(walletHint)
		}

		response, err := query.Do(ctx)
		if err != nil {
			return err
		}
		transactions = response.Transactions
		return nil
	})
	return transactions, err
}

// fetchTransaction loads a transaction by ID: the indexer first, then algod
// pending state for transactions too recent to be indexed. found=false
// means the transaction is unknown everywhere, which is distinct from a
// provider failure.
func (c *Client) fetchTransaction(ctx context.Context, txID string) (models.Transaction, bool, error) {
	var transaction models.Transaction
	err := c.pool.WithIndexer(ctx, func(ctx context.Context, client *indexer.Client, endpoint provider.Endpoint) error {
		response, err := client.LookupTransaction(txID).Do(ctx)
		if err != nil {
			return err
		}
		transaction = response.Transaction
		return nil
	})
	if err == nil {
		return transaction, true, nil
	}

	if pending, found, pendingErr := c.fetchPending(ctx, txID); pendingErr == nil && found {
		return pending, true, nil
	}
	if isNotFound(err) {
		return models.Transaction{}, false, nil
	}
	return models.Transaction{}, false, err
}

func (c *Client) fetchPending(ctx context.Context, txID string) (models.Transaction, bool, error) {
	var transaction models.Transaction
	var found bool
	err := c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, endpoint provider.Endpoint) error {
		info, signed, err := client.PendingTransactionInformation(txID).Do(ctx)
		if err != nil {
			return err
		}
		transaction = models.Transaction{
			Id:             txID,
			Sender:         signed.Txn.Sender.String(),
			Note:           signed.Txn.Note,
			ConfirmedRound: info.ConfirmedRound,
		}
		found = true
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return models.Transaction{}, false, nil
		}
		return models.Transaction{}, false, err
	}
	return transaction, found, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") ||
		strings.Contains(message, "no transaction found") ||
		strings.Contains(message, "404")
}
