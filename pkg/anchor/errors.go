package anchor

import "fmt"

// ValidationError reports malformed anchor input. It is never retried;
// the same input will fail the same way.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RejectedTransactionError reports that the ledger's admission check
// rejected the built transaction. Resubmitting without changing parameters
// would repeat the rejection, so the client never retries it.
type RejectedTransactionError struct {
	TxID   string
	Reason string
}

func (e *RejectedTransactionError) Error() string {
	if e.TxID == "" {
		return fmt.Sprintf("transaction rejected: %s", e.Reason)
	}
	return fmt.Sprintf("transaction %s rejected: %s", e.TxID, e.Reason)
}
