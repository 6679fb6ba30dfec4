package signature

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// KeyExtension is the file extension used when persisting private keys.
const KeyExtension = ".ed25519"

// =============================================================================

// Wallet binds a key pair to a human readable name. The miner and the
// wallet CLI both operate through wallets.
type Wallet struct {
	KeyPair KeyPair
	Name    string
}

// NewWallet constructs a wallet with a freshly generated key pair.
func NewWallet(name string) (Wallet, error) {
	keyPair, err := Generate()
	if err != nil {
		return Wallet{}, err
	}

	return Wallet{
		KeyPair: keyPair,
		Name:    name,
	}, nil
}

// WalletFromPrivateKey restores a wallet from a stored private key.
func WalletFromPrivateKey(name string, privateKey []byte) (Wallet, error) {
	keyPair, err := FromPrivateKeyBytes(privateKey)
	if err != nil {
		return Wallet{}, err
	}

	return Wallet{
		KeyPair: keyPair,
		Name:    name,
	}, nil
}

// Address returns the account address derived from the wallet's public key.
func (w Wallet) Address() string {
	return w.KeyPair.PublicKey().ToAddress()
}

// SignTransaction signs the canonical signable bytes of a transaction.
func (w Wallet) SignTransaction(signableData []byte) Signature {
	return w.KeyPair.Sign(signableData)
}

// =============================================================================

// SaveKey writes the wallet's private key to the specified file as hex.
func (w Wallet) SaveKey(path string) error {
	data := hex.EncodeToString(w.KeyPair.PrivateKeyBytes())

	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}

	return nil
}

// LoadKey reads a hex encoded private key file and restores the wallet.
func LoadKey(name string, path string) (Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Wallet{}, fmt.Errorf("reading key file: %w", err)
	}

	b, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return Wallet{}, fmt.Errorf("decoding key file %q: %w", path, err)
	}

	return WalletFromPrivateKey(name, b)
}
