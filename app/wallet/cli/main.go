package main

import (
	"github.com/pohchain/pohchain/app/wallet/cli/cmd"
)

func main() {
	cmd.Execute()
}
