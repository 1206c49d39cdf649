package main

import (
	"github/chapool/go-relayer/cmd"
)

func main() {
	cmd.Execute()
}
