package main

import "github.com/pandodao/lock-wallet/cmd/lockwallet-cli/cmd"

func main() {
	cmd.Execute()
}
