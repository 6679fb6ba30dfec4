package public

import "time"

// newTx is what a client sends to get a transaction into the mempool. When
// the private key is provided the node signs the transaction on the client's
// behalf. Otherwise the signature and public key must be attached along with
// the id and timestamp the signature was computed over.
type newTx struct {
	ID            string     `json:"id"`
	From          string     `json:"from" validate:"required"`
	To            string     `json:"to" validate:"required"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Data          *string    `json:"data"`
	Timestamp     *time.Time `json:"timestamp"`
	PrivateKey    string     `json:"private_key"`
	Signature     string     `json:"signature"`
	FromPublicKey string     `json:"from_public_key"`
}

type txResult struct {
	Status string `json:"status"`
	TxID   string `json:"tx_id"`
}

type balance struct {
	Address     string  `json:"address"`
	Name        string  `json:"name,omitempty"`
	Balance     float64 `json:"balance"`
	LatestBlock string  `json:"latest_block"`
	Uncommitted int     `json:"uncommitted"`
}

type validateResult struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Reason string `json:"reason,omitempty"`
}

type newWallet struct {
	Name string `json:"name" validate:"required"`
}

type walletCreated struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

type deployContract struct {
	Name     string `json:"name" validate:"required"`
	Code     []byte `json:"code" validate:"required"`
	Owner    string `json:"owner" validate:"required"`
	GasLimit uint64 `json:"gas_limit"`
}

type callContract struct {
	ContractID string `json:"contract_id" validate:"required"`
	Function   string `json:"function" validate:"required"`
	Caller     string `json:"caller" validate:"required"`
	GasLimit   uint64 `json:"gas_limit"`
}
