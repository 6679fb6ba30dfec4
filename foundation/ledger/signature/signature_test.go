package signature_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestSignVerify(t *testing.T) {
	t.Log("Given the need to validate signing and verification.")
	{
		t.Logf("\tTest 0:\tWhen signing a message with a generated key pair.")
		{
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key pair: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to generate a key pair.", success)

			msg := []byte("transfer 100 to bob")
			sig := kp.Sign(msg)

			if !kp.PublicKey().Verify(msg, sig) {
				t.Fatalf("\t%s\tTest 0:\tShould verify a valid signature.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify a valid signature.", success)

			if kp.PublicKey().Verify([]byte("transfer 999 to bob"), sig) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a signature over different data.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a signature over different data.", success)

			other, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a second key pair: %v", failed, err)
			}
			if other.PublicKey().Verify(msg, sig) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a signature from a different key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a signature from a different key.", success)
		}
	}
}

func TestDeterministicKeys(t *testing.T) {
	t.Log("Given the need to validate key restoration from a seed.")
	{
		t.Logf("\tTest 0:\tWhen restoring a key pair from its private bytes.")
		{
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key pair: %v", failed, err)
			}

			restored, err := signature.FromPrivateKeyBytes(kp.PrivateKeyBytes())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to restore from private bytes: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to restore from private bytes.", success)

			if kp.PublicKey().String() != restored.PublicKey().String() {
				t.Fatalf("\t%s\tTest 0:\tShould restore the same public key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the same public key.", success)

			msg := []byte("identical")
			if kp.Sign(msg) != restored.Sign(msg) {
				t.Fatalf("\t%s\tTest 0:\tShould produce identical signatures.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce identical signatures.", success)
		}

		t.Logf("\tTest 1:\tWhen restoring with bad key material.")
		{
			if _, err := signature.FromPrivateKeyBytes(make([]byte, 16)); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a short private key.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a short private key.", success)

			if _, err := signature.PublicKeyFromBytes(make([]byte, 16)); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a short public key.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a short public key.", success)

			if _, err := signature.SignatureFromBytes(make([]byte, 16)); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a short signature.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a short signature.", success)
		}
	}
}

func TestAddress(t *testing.T) {
	t.Log("Given the need to validate address derivation.")
	{
		t.Logf("\tTest 0:\tWhen deriving an address from a public key.")
		{
			kp, err := signature.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key pair: %v", failed, err)
			}

			addr := kp.PublicKey().ToAddress()
			if len(addr) != 16 {
				t.Fatalf("\t%s\tTest 0:\tShould derive a 16 character address: got %d", failed, len(addr))
			}
			t.Logf("\t%s\tTest 0:\tShould derive a 16 character address.", success)

			if addr != kp.PublicKey().String()[:16] {
				t.Fatalf("\t%s\tTest 0:\tShould be the prefix of the hex public key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be the prefix of the hex public key.", success)
		}
	}
}

func TestWalletRoundTrip(t *testing.T) {
	t.Log("Given the need to validate wallet key persistence.")
	{
		t.Logf("\tTest 0:\tWhen saving and loading a wallet key file.")
		{
			wallet, err := signature.NewWallet("kennedy")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a wallet: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to create a wallet.", success)

			path := filepath.Join(t.TempDir(), "kennedy"+signature.KeyExtension)
			if err := wallet.SaveKey(path); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the key.", success)

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the key file on disk: %v", failed, err)
			}
			if info.Mode().Perm() != 0600 {
				t.Fatalf("\t%s\tTest 0:\tShould write the key with 0600 permissions: got %v", failed, info.Mode().Perm())
			}
			t.Logf("\t%s\tTest 0:\tShould write the key with 0600 permissions.", success)

			loaded, err := signature.LoadKey("kennedy", path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the key.", success)

			if loaded.Address() != wallet.Address() {
				t.Fatalf("\t%s\tTest 0:\tShould restore the same address.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the same address.", success)
		}
	}
}
