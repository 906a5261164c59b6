//go:build !ebiten

package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	cfg := NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	fmt.Fprintln(os.Stderr, "katamini needs the windowed build: go build -tags ebiten ./cmd/katamini")
	fmt.Fprintln(os.Stderr, "for a windowless run use katamini-headless")
	os.Exit(1)
}
