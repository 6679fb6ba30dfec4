package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	name := strings.TrimSuffix(accountName, signature.KeyExtension)

	wallet, err := signature.NewWallet(name)
	if err != nil {
		log.Fatal(err)
	}

	if err := wallet.SaveKey(getPrivateKeyPath()); err != nil {
		log.Fatal(err)
	}

	fmt.Println("address:", wallet.Address())
}
