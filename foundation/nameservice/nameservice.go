// Package nameservice reads the key folder and creates a name service
// lookup from ledger addresses to human readable account names.
package nameservice

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	accounts map[string]string
}

// New constructs a name service from the key files in the specified folder.
// A folder that doesn't exist yet yields an empty mapping so a node can
// start on a fresh machine before any keys have been generated.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[string]string),
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != signature.KeyExtension {
			return nil
		}

		name := strings.TrimSuffix(path.Base(fileName), signature.KeyExtension)

		wallet, err := signature.LoadKey(name, fileName)
		if err != nil {
			return err
		}

		ns.accounts[wallet.Address()] = name

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.accounts[address]
	if !exists {
		return address
	}

	return name
}

// Copy returns a copy of the current address to name mappings.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.accounts))
	for address, name := range ns.accounts {
		cpy[address] = name
	}

	return cpy
}
