package anchor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/rs/zerolog"

	"github.com/algocert/anchor-sdk-go/pkg/note"
	"github.com/algocert/anchor-sdk-go/pkg/provider"
	"github.com/algocert/anchor-sdk-go/pkg/shared"
)

type Client struct {
	pool           *provider.Pool
	session        *provider.Session
	signer         shared.Signer
	logger         zerolog.Logger
	confirmTimeout time.Duration
}

// NewClient creates an anchoring client over the given provider pool and
// signing key.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Pool == nil {
		return nil, fmt.Errorf("provider pool is required")
	}
	if len(config.Signer.PrivateKey) == 0 {
		return nil, fmt.Errorf("signer is required")
	}

	confirmTimeout := config.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}

	return &Client{
		pool:           config.Pool,
		session:        provider.NewSession(config.Pool),
		signer:         config.Signer,
		logger:         config.Logger,
		confirmTimeout: confirmTimeout,
	}, nil
}

// SignerAddress returns the address anchoring transactions are sent from.
func (c *Client) SignerAddress() string {
	return c.signer.Address
}

// Anchor validates the inputs, embeds them in a note, broadcasts a
// zero-value payment carrying it, and waits for confirmation within the
// configured window. A result with Pending set means the transaction was
// accepted but not yet visible as confirmed; the caller should re-poll with
// WaitForConfirmation rather than anchoring again.
func (c *Client) Anchor(ctx context.Context, params AnchorParams) (*AnchorResult, error) {
	record, err := c.buildRecord(params)
	if err != nil {
		return nil, err
	}
	payload := note.Encode(*record)

	suggestedParams, err := c.suggestedParams(ctx)
	if err != nil {
		return nil, err
	}

	paymentTxn, err := transaction.MakePaymentTxn(
		c.signer.Address,
		params.Recipient,
		0,
		payload,
		"",
		suggestedParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment transaction: %w", err)
	}

	txID, signedTxn, err := crypto.SignTransaction(c.signer.PrivateKey, paymentTxn)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.broadcast(ctx, txID, signedTxn); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("txid", txID).
		Str("fingerprint", record.FingerprintHex).
		Msg("anchor transaction broadcast")

	confirmation, err := c.WaitForConfirmation(ctx, txID, c.confirmTimeout)
	if err != nil {
		return nil, err
	}

	return &AnchorResult{
		TxID:           txID,
		ConfirmedRound: confirmation.Round,
		Pending:        confirmation.Pending,
		ConfirmedVia:   confirmation.Path,
		Record:         *record,
	}, nil
}

// HealthCheck reports success if any algod endpoint responds.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, _ provider.Endpoint) error {
		return client.HealthCheck().Do(ctx)
	})
}

// Status returns node status from the first algod endpoint that responds.
func (c *Client) Status(ctx context.Context) (models.NodeStatus, error) {
	var status models.NodeStatus
	err := c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, _ provider.Endpoint) error {
		nodeStatus, statusErr := client.Status().Do(ctx)
		if statusErr != nil {
			return statusErr
		}
		status = nodeStatus
		return nil
	})
	return status, err
}

// PendingInfo returns pending-pool information for a transaction from the
// first algod endpoint that responds.
func (c *Client) PendingInfo(ctx context.Context, txID string) (models.PendingTransactionInfoResponse, error) {
	var info models.PendingTransactionInfoResponse
	err := c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, _ provider.Endpoint) error {
		pendingInfo, _, infoErr := client.PendingTransactionInformation(txID).Do(ctx)
		if infoErr != nil {
			return infoErr
		}
		info = pendingInfo
		return nil
	})
	return info, err
}

func (c *Client) buildRecord(params AnchorParams) (*note.Record, error) {
	if _, err := types.DecodeAddress(strings.TrimSpace(params.Recipient)); err != nil {
		return nil, &ValidationError{Field: "recipient", Message: err.Error()}
	}
	if err := note.ValidateFingerprint(params.FingerprintHex); err != nil {
		return nil, &ValidationError{Field: "fingerprint", Message: err.Error()}
	}
	if strings.TrimSpace(params.ContentID) == "" {
		return nil, &ValidationError{Field: "content_id", Message: "content ID is required"}
	}

	kind := strings.TrimSpace(params.Kind)
	ownerName := strings.TrimSpace(params.OwnerName)
	version := note.VersionV1
	if kind != "" || ownerName != "" {
		if kind == "" {
			return nil, &ValidationError{Field: "kind", Message: "kind is required when owner name is set"}
		}
		if ownerName == "" {
			return nil, &ValidationError{Field: "owner_name", Message: "owner name is required when kind is set"}
		}
		version = note.VersionV2
	}

	return &note.Record{
		Version:         version,
		FingerprintHex:  note.NormalizeFingerprint(params.FingerprintHex),
		ContentID:       strings.TrimSpace(params.ContentID),
		Kind:            kind,
		OwnerName:       ownerName,
		WalletAddress:   c.signer.Address,
		TimestampMillis: time.Now().UnixMilli(),
	}, nil
}

func (c *Client) suggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	var suggestedParams types.SuggestedParams
	err := c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, _ provider.Endpoint) error {
		fetched, fetchErr := client.SuggestedParams().Do(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		suggestedParams = fetched
		return nil
	})
	if err != nil {
		return types.SuggestedParams{}, err
	}

	suggestedParams.LastRoundValid = suggestedParams.FirstRoundValid + validityWindowRounds
	suggestedParams.FlatFee = true
	if suggestedParams.MinFee > 0 {
		suggestedParams.Fee = types.MicroAlgos(suggestedParams.MinFee)
	}
	return suggestedParams, nil
}

func (c *Client) broadcast(ctx context.Context, txID string, signedTxn []byte) error {
	err := c.pool.WithAlgod(ctx, func(ctx context.Context, client *algod.Client, endpoint provider.Endpoint) error {
		broadcastID, sendErr := client.SendRawTransaction(signedTxn).Do(ctx)
		if sendErr != nil {
			return sendErr
		}
		c.logger.Debug().Str("endpoint", endpoint.URL).Str("txid", broadcastID).Msg("transaction sent")
		return nil
	})
	if err == nil {
		return nil
	}

	var unavailable *provider.UnavailableError
	if errors.As(err, &unavailable) && isAdmissionRejection(unavailable.Err) {
		return &RejectedTransactionError{TxID: txID, Reason: unavailable.Err.Error()}
	}
	return err
}

// isAdmissionRejection distinguishes the node refusing the transaction
// itself from the node being unreachable. Admission failures come back as
// HTTP 400 responses from the transaction pool.
func isAdmissionRejection(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, marker := range []string{"transactionpool", "txn dead", "overspend", "below min", "400"} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
