// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/pohchain/pohchain/business/web/v1"
	"github.com/pohchain/pohchain/foundation/events"
	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/miner"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/pohchain/pohchain/foundation/ledger/state"
	"github.com/pohchain/pohchain/foundation/nameservice"
	"github.com/pohchain/pohchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.Genesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// ChainInfo returns a summary of the current chain.
func (h Handlers) ChainInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info := h.State.ChainInfo()
	return web.Respond(ctx, w, info, http.StatusOK)
}

// ValidateChain runs full chain validation and reports the result.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validateResult{
		Valid:  true,
		Blocks: len(h.State.Blocks()),
	}

	if err := h.State.Validate(); err != nil {
		resp.Valid = false
		resp.Reason = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the full ordered block sequence.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.Blocks()
	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByIndex returns the block stored at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return v1.NewRequestError(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	block, exists := h.State.BlockByIndex(index)
	if !exists {
		return v1.NewRequestError(fmt.Errorf("block %d not found", index), http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Balance returns the computed balance for the specified address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	info := h.State.ChainInfo()

	resp := balance{
		Address:     address,
		Name:        h.NS.Lookup(address),
		Balance:     h.State.Balance(address),
		LatestBlock: info.LatestHash,
		Uncommitted: h.State.MempoolCount(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.MempoolTransactions()
	return web.Respond(ctx, w, txs, http.StatusOK)
}

// TransactionByID looks up a committed transaction by its id.
func (h Handlers) TransactionByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	tx, exists := h.State.TransactionByID(id)
	if !exists {
		return v1.NewRequestError(fmt.Errorf("transaction %q not found", id), http.StatusNotFound)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// SendTransaction adds a new user transaction to the mempool.
func (h Handlers) SendTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	var tx database.Transaction

	switch {
	case ntx.PrivateKey != "":
		var err error
		tx, err = database.NewTransaction(ntx.From, ntx.To, ntx.Amount, ntx.Data)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		pk, err := hex.DecodeString(ntx.PrivateKey)
		if err != nil {
			return v1.NewRequestError(fmt.Errorf("invalid private key: %w", err), http.StatusBadRequest)
		}

		wallet, err := signature.WalletFromPrivateKey(ntx.From, pk)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		if err := tx.Sign(wallet); err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

	case ntx.Signature != "" && ntx.FromPublicKey != "":

		// A client side signature covers the id and timestamp the client
		// produced, so the transaction is reconstructed from those fields
		// rather than minted fresh.
		if ntx.ID == "" || ntx.Timestamp == nil {
			return v1.NewRequestError(errors.New("signed transaction requires id and timestamp"), http.StatusBadRequest)
		}

		sigBytes, err := hex.DecodeString(ntx.Signature)
		if err != nil {
			return v1.NewRequestError(fmt.Errorf("invalid signature: %w", err), http.StatusBadRequest)
		}
		sig, err := signature.SignatureFromBytes(sigBytes)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		pubBytes, err := hex.DecodeString(ntx.FromPublicKey)
		if err != nil {
			return v1.NewRequestError(fmt.Errorf("invalid public key: %w", err), http.StatusBadRequest)
		}
		pub, err := signature.PublicKeyFromBytes(pubBytes)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		tx = database.Transaction{
			ID:            ntx.ID,
			From:          ntx.From,
			To:            ntx.To,
			Amount:        ntx.Amount,
			Data:          ntx.Data,
			Timestamp:     ntx.Timestamp.UTC(),
			Signature:     &sig,
			FromPublicKey: &pub,
		}

	default:
		if ntx.From != database.GenesisAccount && ntx.From != database.MinerAccount {
			return v1.NewRequestError(errors.New("transaction must be signed"), http.StatusBadRequest)
		}

		var err error
		tx, err = database.NewTransaction(ntx.From, ntx.To, ntx.Amount, ntx.Data)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tx.ID, "from", tx.From, "to", tx.To, "amount", tx.Amount)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := txResult{
		Status: "transaction added to mempool",
		TxID:   tx.ID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals the mining worker to mine the next block.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MiningStats returns the accumulated mining statistics.
func (h Handlers) MiningStats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Difficulty uint32      `json:"difficulty"`
		Stats      miner.Stats `json:"stats"`
	}{
		Difficulty: h.State.Difficulty(),
		Stats:      h.State.MiningStats(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Wallets returns the public listing of all stored wallets.
func (h Handlers) Wallets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallets, err := h.State.Wallets()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, wallets, http.StatusOK)
}

// Wallet returns the stored wallet for the specified address.
func (h Handlers) Wallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	rec, err := h.State.Wallet(address)
	if err != nil {
		return v1.NewRequestError(fmt.Errorf("wallet %q not found", address), http.StatusNotFound)
	}

	resp := walletCreated{
		Address:   rec.Address,
		Name:      rec.Name,
		PublicKey: rec.PublicKey,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CreateWallet generates a new keypair and stores the wallet.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nw newWallet
	if err := web.Decode(r, &nw); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	wallet, err := signature.NewWallet(nw.Name)
	if err != nil {
		return err
	}

	if err := h.State.UpsertWallet(wallet); err != nil {
		return err
	}

	resp := walletCreated{
		Address:   wallet.Address(),
		Name:      wallet.Name,
		PublicKey: wallet.KeyPair.PublicKey().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Contracts returns the set of deployed contracts.
func (h Handlers) Contracts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	contracts := h.State.Contracts().Contracts()
	return web.Respond(ctx, w, contracts, http.StatusOK)
}

// ContractByID returns the deployed contract with the specified id.
func (h Handlers) ContractByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	con, exists := h.State.Contracts().Contract(id)
	if !exists {
		return v1.NewRequestError(fmt.Errorf("contract %q not found", id), http.StatusNotFound)
	}

	return web.Respond(ctx, w, con, http.StatusOK)
}

// DeployContract registers new contract bytecode with the engine.
func (h Handlers) DeployContract(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var dc deployContract
	if err := web.Decode(r, &dc); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	con, err := h.State.Contracts().Deploy(dc.Name, dc.Code, dc.Owner, dc.GasLimit)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("contract deployed", "traceid", v.TraceID, "contract", con.ID, "owner", con.Owner)

	return web.Respond(ctx, w, con, http.StatusCreated)
}

// CallContract executes a function against a deployed contract.
func (h Handlers) CallContract(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cc callContract
	if err := web.Decode(r, &cc); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	result, err := h.State.Contracts().Call(cc.ContractID, cc.Function, cc.Caller, cc.GasLimit)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, result, http.StatusOK)
}
