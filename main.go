package main

import (
	"github.com/0xPolygon/evm-bridge/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
