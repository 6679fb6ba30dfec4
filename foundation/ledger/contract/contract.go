// Package contract provides the contract registry and a sandbox stub.
// Bytecode is loaded and size checked but never executed; call results are
// synthesized with gas accounting so the surrounding surfaces can be
// exercised end to end.
package contract

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// wasmMagic is the 4 byte header every wasm module starts with.
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// DefaultMaxCodeSize caps deployed bytecode at 16 MiB.
const DefaultMaxCodeSize = 16 * 1024 * 1024

// =============================================================================

// DeployError indicates bytecode was rejected before registration.
type DeployError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (de *DeployError) Error() string {
	return fmt.Sprintf("contract %q rejected: %s", de.Name, de.Reason)
}

// =============================================================================

// Contract is a registered piece of bytecode and its ownership metadata.
type Contract struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       []byte    `json:"code"`
	Owner      string    `json:"owner"`
	DeployedAt time.Time `json:"deployed_at"`
	GasLimit   uint64    `json:"gas_limit"`
}

// ExecutionResult is the synthesized outcome of a contract call.
type ExecutionResult struct {
	Success     bool     `json:"success"`
	ReturnValue any      `json:"return_value"`
	GasUsed     uint64   `json:"gas_used"`
	Logs        []string `json:"logs"`
	Error       string   `json:"error,omitempty"`
}

// =============================================================================

// Engine maintains the deployed contracts. Execution is not implemented;
// Call produces a synthesized result.
type Engine struct {
	maxCodeSize int
	contracts   map[string]Contract
	mu          sync.RWMutex
}

// NewEngine constructs a contract engine with the default code size cap.
func NewEngine() *Engine {
	return &Engine{
		maxCodeSize: DefaultMaxCodeSize,
		contracts:   make(map[string]Contract),
	}
}

// Deploy validates and registers bytecode. The code must carry the wasm
// magic header and fit under the size cap.
func (e *Engine) Deploy(name string, code []byte, owner string, gasLimit uint64) (Contract, error) {
	if len(code) < len(wasmMagic) || !bytes.Equal(code[:len(wasmMagic)], wasmMagic) {
		return Contract{}, &DeployError{Name: name, Reason: "code is not a wasm module"}
	}

	if len(code) > e.maxCodeSize {
		return Contract{}, &DeployError{Name: name, Reason: fmt.Sprintf("code size %d exceeds limit %d", len(code), e.maxCodeSize)}
	}

	c := Contract{
		ID:         uuid.NewString(),
		Name:       name,
		Code:       code,
		Owner:      owner,
		DeployedAt: time.Now().UTC(),
		GasLimit:   gasLimit,
	}

	e.mu.Lock()
	e.contracts[c.ID] = c
	e.mu.Unlock()

	return c, nil
}

// Call synthesizes an execution result for the specified contract. Gas is
// charged proportionally to the code size as a stand-in for real metering.
func (e *Engine) Call(contractID string, function string, caller string, gasLimit uint64) (ExecutionResult, error) {
	e.mu.RLock()
	c, exists := e.contracts[contractID]
	e.mu.RUnlock()

	if !exists {
		return ExecutionResult{}, fmt.Errorf("contract %q not found", contractID)
	}

	gasUsed := uint64(len(c.Code) / 10)
	if gasUsed == 0 {
		gasUsed = 1
	}

	if gasLimit > 0 && gasUsed > gasLimit {
		return ExecutionResult{
			Success: false,
			GasUsed: gasLimit,
			Error:   "out of gas",
		}, nil
	}

	return ExecutionResult{
		Success:     true,
		ReturnValue: nil,
		GasUsed:     gasUsed,
		Logs: []string{
			fmt.Sprintf("call %s.%s by %s", c.Name, function, caller),
		},
	}, nil
}

// Contract returns the registered contract with the specified id.
func (e *Engine) Contract(contractID string) (Contract, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, exists := e.contracts[contractID]
	return c, exists
}

// Contracts returns a copy of the registered contracts.
func (e *Engine) Contracts() []Contract {
	e.mu.RLock()
	defer e.mu.RUnlock()

	contracts := make([]Contract, 0, len(e.contracts))
	for _, c := range e.contracts {
		contracts = append(contracts, c)
	}

	return contracts
}
