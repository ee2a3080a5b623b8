package main

import "github.com/ironspire/navcore/cmd/navcorectl/cmd"

func main() {
	cmd.Execute()
}
