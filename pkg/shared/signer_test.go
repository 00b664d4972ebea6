package shared

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
)

func TestSignerFromMnemonicRoundTrip(t *testing.T) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	phrase, err := mnemonic.FromPrivateKey(privateKey)
	if err != nil {
		t.Fatal(err)
	}

	signer, err := SignerFromMnemonic(phrase)
	if err != nil {
		t.Fatalf("SignerFromMnemonic returned error: %v", err)
	}
	if !privateKey.Equal(signer.PrivateKey) {
		t.Error("derived private key does not match the source key")
	}
	if len(signer.Address) != 58 {
		t.Errorf("address %q does not look like an Algorand address", signer.Address)
	}
}

func TestSignerFromMnemonicRejectsGarbage(t *testing.T) {
	if _, err := SignerFromMnemonic("definitely not twenty five valid words"); err == nil {
		t.Fatal("expected error for invalid mnemonic")
	}
}

func TestSignerFromEnvRequiresMnemonic(t *testing.T) {
	t.Setenv("ALGOD_MNEMONIC", "")
	t.Setenv("ANCHOR_MNEMONIC", "")

	if _, err := SignerFromEnv(); err == nil {
		t.Fatal("expected error when no mnemonic is configured")
	}
}
