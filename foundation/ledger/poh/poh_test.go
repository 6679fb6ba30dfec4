package poh_test

import (
	"testing"

	"github.com/pohchain/pohchain/foundation/ledger/poh"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestRecord(t *testing.T) {
	t.Log("Given the need to validate the hash clock api.")
	{
		t.Logf("\tTest 0:\tWhen recording events into the clock.")
		{
			rec := poh.NewRecorder()

			if rec.TickCount() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould start with a zero tick count: got %d", failed, rec.TickCount())
			}
			t.Logf("\t%s\tTest 0:\tShould start with a zero tick count.", success)

			before := rec.CurrentHash()
			h1 := rec.Record("event one")

			if h1 == before {
				t.Fatalf("\t%s\tTest 0:\tShould advance the hash on record.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould advance the hash on record.", success)

			if h1 != rec.CurrentHash() {
				t.Fatalf("\t%s\tTest 0:\tShould return the new current hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return the new current hash.", success)

			if rec.TickCount() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould count one tick per record: got %d", failed, rec.TickCount())
			}
			t.Logf("\t%s\tTest 0:\tShould count one tick per record.", success)

			if len(h1) != 64 {
				t.Fatalf("\t%s\tTest 0:\tShould produce a 64 character hex hash: got %d", failed, len(h1))
			}
			t.Logf("\t%s\tTest 0:\tShould produce a 64 character hex hash.", success)
		}
	}
}

func TestDeterminism(t *testing.T) {
	t.Log("Given the need to validate two clocks advance identically.")
	{
		t.Logf("\tTest 0:\tWhen recording the same events into two clocks.")
		{
			rec1 := poh.NewRecorder()
			rec2 := poh.NewRecorder()

			if rec1.CurrentHash() != rec2.CurrentHash() {
				t.Fatalf("\t%s\tTest 0:\tShould start from the same seed hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould start from the same seed hash.", success)

			events := []string{"a", "b", "c"}
			for _, ev := range events {
				rec1.Record(ev)
				rec2.Record(ev)
			}

			if rec1.CurrentHash() != rec2.CurrentHash() {
				t.Fatalf("\t%s\tTest 0:\tShould arrive at the same hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould arrive at the same hash.", success)

			rec1.Record("divergent")
			if rec1.CurrentHash() == rec2.CurrentHash() {
				t.Fatalf("\t%s\tTest 0:\tShould diverge on different events.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould diverge on different events.", success)
		}
	}
}

func TestVerifySequence(t *testing.T) {
	t.Log("Given the need to validate a recorded sequence.")
	{
		t.Logf("\tTest 0:\tWhen replaying an event against a previous hash.")
		{
			rec := poh.NewRecorder()
			start := rec.CurrentHash()
			end := rec.Record("tx-1")

			verifier := poh.NewRecorder()
			if !verifier.VerifySequence(start, "tx-1", end) {
				t.Fatalf("\t%s\tTest 0:\tShould verify an honest record.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify an honest record.", success)

			if verifier.VerifySequence(start, "tampered", end) {
				t.Fatalf("\t%s\tTest 0:\tShould reject tampered data.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject tampered data.", success)

			if verifier.VerifySequence(end, "tx-1", end) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the wrong previous hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the wrong previous hash.", success)
		}
	}
}

func TestIterations(t *testing.T) {
	t.Log("Given the need to validate configurable hash chain length.")
	{
		t.Logf("\tTest 0:\tWhen recording with different iteration counts.")
		{
			rec1 := poh.NewRecorderWithIterations(1)
			rec2 := poh.NewRecorderWithIterations(2)

			h1 := rec1.Record("event")
			h2 := rec2.Record("event")

			if h1 == h2 {
				t.Fatalf("\t%s\tTest 0:\tShould produce different hashes for different iteration counts.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce different hashes for different iteration counts.", success)

			if rec1.Iterations() != 1 || rec2.Iterations() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould report the configured iteration count.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the configured iteration count.", success)
		}
	}
}
