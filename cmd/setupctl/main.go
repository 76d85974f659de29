// Command setupctl runs Root setups from the terminal: complete a setup in
// one go, inspect the component catalog, or step through a saved replay.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
