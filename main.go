// Package main provides the entry point for n64sim.
// n64sim is a functional simulator of the N64's NEC VR4300 CPU.
//
// For the full CLI, use: go run ./cmd/n64sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("n64sim - N64 VR4300 CPU Simulator")
	fmt.Println("")
	fmt.Println("Usage: n64sim [options] [pif] [rom]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, --config      Path to machine configuration JSON file")
	fmt.Println("  -p, --pif         PIF boot ROM image")
	fmt.Println("  -r, --rom         Cartridge image (.z64, .v64 or .n64)")
	fmt.Println("  -m, --max         Stop after this many instructions")
	fmt.Println("  -l, --log-level   Log level (panic..trace)")
	fmt.Println("  -t, --trace       Log every executed instruction")
	fmt.Println("      --cpuprofile  Write a CPU profile into this directory")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/n64sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/n64sim' instead.")
	}
}
