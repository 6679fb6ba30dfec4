package database

import "fmt"

// Reason identifies the specific invariant a block or chain violated.
type Reason string

// The closed set of validation failure reasons.
const (
	ReasonHashMismatch      Reason = "hash mismatch"
	ReasonEmptyTransactions Reason = "empty transactions"
	ReasonEmptyAddress      Reason = "empty address"
	ReasonBadLinkage        Reason = "previous hash mismatch"
	ReasonBadIndex          Reason = "index not contiguous"
)

// =============================================================================

// ValidationError indicates a candidate block or the chain as a whole
// failed an invariant check. These failures are never retryable; the block
// must be rejected.
type ValidationError struct {
	Index  uint64 // Block index where the violation was found.
	Reason Reason
	Exp    string // Expected value for linkage and index failures.
	Got    string // Observed value for linkage and index failures.
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if ve.Exp != "" || ve.Got != "" {
		return fmt.Sprintf("block %d: %s: exp %s, got %s", ve.Index, ve.Reason, ve.Exp, ve.Got)
	}

	return fmt.Sprintf("block %d: %s", ve.Index, ve.Reason)
}

// =============================================================================

// InputError indicates malformed input that is rejected at construction
// and never enters the chain.
type InputError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (ie *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %q", ie.Field, ie.Value)
}

// =============================================================================

// EmptyChainError indicates the latest block was requested from an empty
// chain. The genesis invariant makes this a programming error rather than
// a runtime condition.
type EmptyChainError struct{}

// Error implements the error interface.
func (*EmptyChainError) Error() string {
	return "chain is empty"
}
