package contract_test

import (
	"errors"
	"testing"

	"github.com/pohchain/pohchain/foundation/ledger/contract"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// Minimal wasm module header.
var wasmCode = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}

func TestDeployAndCall(t *testing.T) {
	t.Log("Given the need to validate contract deployment and calls.")
	{
		t.Logf("\tTest 0:\tWhen deploying valid wasm bytecode.")
		{
			eng := contract.NewEngine()

			c, err := eng.Deploy("token", wasmCode, "alice", 1000)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to deploy the contract: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to deploy the contract.", success)

			if c.ID == "" {
				t.Fatalf("\t%s\tTest 0:\tShould assign a contract id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould assign a contract id.", success)

			got, exists := eng.Contract(c.ID)
			if !exists || got.Owner != "alice" {
				t.Fatalf("\t%s\tTest 0:\tShould find the deployed contract.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the deployed contract.", success)

			result, err := eng.Call(c.ID, "transfer", "bob", 1000)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to call the contract: %v", failed, err)
			}
			if !result.Success || result.GasUsed == 0 {
				t.Fatalf("\t%s\tTest 0:\tShould charge gas for a successful call.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould charge gas for a successful call.", success)
		}

		t.Logf("\tTest 1:\tWhen calling with too little gas.")
		{
			eng := contract.NewEngine()

			// Gas is charged at a tenth of the code size, so pad the module
			// until a limit of one is too small.
			big := append([]byte{}, wasmCode...)
			for len(big) < 100 {
				big = append(big, 0x00)
			}

			c, err := eng.Deploy("heavy", big, "alice", 1000)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to deploy the heavy contract: %v", failed, err)
			}

			result, err := eng.Call(c.ID, "transfer", "bob", 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould not error on out of gas: %v", failed, err)
			}
			if result.Success || result.Error != "out of gas" {
				t.Fatalf("\t%s\tTest 1:\tShould report out of gas: %+v", failed, result)
			}
			t.Logf("\t%s\tTest 1:\tShould report out of gas.", success)

			if _, err := eng.Call("missing", "transfer", "bob", 1000); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a call to an unknown contract.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a call to an unknown contract.", success)
		}

		t.Logf("\tTest 2:\tWhen deploying invalid bytecode.")
		{
			eng := contract.NewEngine()

			var de *contract.DeployError
			if _, err := eng.Deploy("bad", []byte{0x01, 0x02}, "alice", 0); !errors.As(err, &de) {
				t.Fatalf("\t%s\tTest 2:\tShould reject code without the wasm magic: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject code without the wasm magic.", success)
		}
	}
}
