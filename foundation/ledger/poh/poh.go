// Package poh implements a proof-of-history recorder, a sequential hash
// clock that binds data to a position in a verifiable hash sequence
// without depending on wall-clock time.
package poh

import (
	"crypto/sha256"
	"encoding/hex"
)

// genesisSeed is the value the hash sequence starts from. Every node must
// use the same seed or recorded ticks won't verify across nodes.
const genesisSeed = "poh-genesis-seed-solana-inspired"

// DefaultIterations is the work factor applied to each tick. Higher values
// make it more expensive to fabricate a sequence quickly.
const DefaultIterations = 1000

// =============================================================================

// Recorder maintains the state of the sequential hash clock. One tick of
// the clock folds the provided data into the running hash and then applies
// a fixed number of extra hash rounds to represent elapsed work.
type Recorder struct {
	currentHash string
	iterations  int
	tickCount   uint64
}

// NewRecorder constructs a recorder using the default number of iterations.
func NewRecorder() *Recorder {
	return NewRecorderWithIterations(DefaultIterations)
}

// NewRecorderWithIterations constructs a recorder with the specified work
// factor. Record and VerifySequence must use the same value for a tick
// to be independently verifiable.
func NewRecorderWithIterations(iterations int) *Recorder {
	return &Recorder{
		currentHash: genesisSeed,
		iterations:  iterations,
	}
}

// Record folds the specified data into the hash sequence and advances the
// clock by exactly one tick. The returned digest becomes the new current
// hash and is rendered as lowercase hex.
func (r *Recorder) Record(data string) string {
	digest := chain(r.currentHash, data, r.iterations)

	r.currentHash = digest
	r.tickCount++

	return digest
}

// VerifySequence re-derives a tick from an arbitrary previous hash and
// checks it against the expected digest. Any party holding the prior
// tick's hash can prove the sequential work was performed.
func (r *Recorder) VerifySequence(previousHash string, data string, expectedHash string) bool {
	return chain(previousHash, data, r.iterations) == expectedHash
}

// CurrentHash returns the hash produced by the most recent tick.
func (r *Recorder) CurrentHash() string {
	return r.currentHash
}

// TickCount returns the number of ticks recorded so far.
func (r *Recorder) TickCount() uint64 {
	return r.tickCount
}

// Iterations returns the configured work factor.
func (r *Recorder) Iterations() int {
	return r.iterations
}

// =============================================================================

// chain computes one tick of the sequence: an initial hash over the
// previous hash and the data, followed by the configured number of
// hash-of-hash rounds over the raw digest.
func chain(previousHash string, data string, iterations int) string {
	h := sha256.New()
	h.Write([]byte(previousHash))
	h.Write([]byte(data))
	digest := h.Sum(nil)

	for i := 0; i < iterations; i++ {
		next := sha256.Sum256(digest)
		digest = next[:]
	}

	return hex.EncodeToString(digest)
}
