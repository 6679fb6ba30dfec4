package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/spf13/cobra"
)

var (
	url    string
	to     string
	amount float64
	data   string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		wallet, err := loadWallet()
		if err != nil {
			log.Fatal(err)
		}

		var payload *string
		if data != "" {
			payload = &data
		}

		tx, err := database.NewTransaction(wallet.Address(), to, amount, payload)
		if err != nil {
			log.Fatal(err)
		}

		if err := tx.Sign(wallet); err != nil {
			log.Fatal(err)
		}

		body, err := json.Marshal(tx)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/tx/send", url), "application/json", bytes.NewBuffer(body))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		fmt.Println("status:", resp.Status)
		fmt.Println("tx:", tx.ID)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&data, "data", "d", "", "Data to attach.")
}
