// Package cmd contains the wallet app commands.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, signature.KeyExtension) {
		name += signature.KeyExtension
	}

	return filepath.Join(accountPath, name)
}

func loadWallet() (signature.Wallet, error) {
	name := strings.TrimSuffix(accountName, signature.KeyExtension)
	return signature.LoadKey(name, getPrivateKeyPath())
}
