// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/pohchain/pohchain/app/services/node/handlers/v1/private"
	"github.com/pohchain/pohchain/app/services/node/handlers/v1/public"
	"github.com/pohchain/pohchain/foundation/events"
	"github.com/pohchain/pohchain/foundation/ledger/state"
	"github.com/pohchain/pohchain/foundation/nameservice"
	"github.com/pohchain/pohchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain/info", pbl.ChainInfo)
	app.Handle(http.MethodGet, version, "/chain/validate", pbl.ValidateChain)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/list/:index", pbl.BlockByIndex)
	app.Handle(http.MethodGet, version, "/balances/list/:address", pbl.Balance)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
	app.Handle(http.MethodGet, version, "/mining/stats", pbl.MiningStats)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/list/:id", pbl.TransactionByID)
	app.Handle(http.MethodPost, version, "/tx/send", pbl.SendTransaction)
	app.Handle(http.MethodGet, version, "/wallets/list", pbl.Wallets)
	app.Handle(http.MethodGet, version, "/wallets/list/:address", pbl.Wallet)
	app.Handle(http.MethodPost, version, "/wallets/create", pbl.CreateWallet)
	app.Handle(http.MethodGet, version, "/contracts/list", pbl.Contracts)
	app.Handle(http.MethodGet, version, "/contracts/list/:id", pbl.ContractByID)
	app.Handle(http.MethodPost, version, "/contracts/deploy", pbl.DeployContract)
	app.Handle(http.MethodPost, version, "/contracts/call", pbl.CallContract)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/peers/list", prv.Peers)
	app.Handle(http.MethodPost, version, "/node/peers/add", prv.AddPeer)
	app.Handle(http.MethodGet, version, "/node/tx/uncommitted/list", prv.Mempool)
}
