package shared

import (
	"crypto/ed25519"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
)

// Signer is the process-wide anchoring key: the account anchoring
// transactions are signed with and sent from. Loaded once at startup from a
// secret; never reloaded.
type Signer struct {
	PrivateKey ed25519.PrivateKey
	Address    string
}

// SignerFromMnemonic derives the signer from a 25-word Algorand mnemonic.
func SignerFromMnemonic(phrase string) (Signer, error) {
	privateKey, err := mnemonic.ToPrivateKey(phrase)
	if err != nil {
		return Signer{}, fmt.Errorf("invalid mnemonic: %w", err)
	}

	account, err := crypto.AccountFromPrivateKey(privateKey)
	if err != nil {
		return Signer{}, fmt.Errorf("failed to derive account from mnemonic: %w", err)
	}

	return Signer{
		PrivateKey: privateKey,
		Address:    account.Address.String(),
	}, nil
}

// SignerFromEnv loads the signer from ALGOD_MNEMONIC (or ANCHOR_MNEMONIC).
func SignerFromEnv() (Signer, error) {
	LoadDotEnv()

	phrase := FirstNonEmpty(Env("ALGOD_MNEMONIC"), Env("ANCHOR_MNEMONIC"))
	if phrase == "" {
		return Signer{}, fmt.Errorf("ALGOD_MNEMONIC is required")
	}
	return SignerFromMnemonic(phrase)
}
