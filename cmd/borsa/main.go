// Package main is the entry point for borsa.
package main

import (
	"github.com/donaldgifford/borsa/cmd/borsa/cmd"
)

func main() {
	cmd.Execute()
}
