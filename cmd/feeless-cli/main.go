/*
Copyright © 2026 feeless
*/
package main

import "github.com/fee-less/feeless-wallet/cmd/feeless-cli/cmd"

func main() {
	cmd.Execute()
}
