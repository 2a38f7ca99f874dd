// Package main provides the relink CLI.
package main

import "github.com/mesh-intelligence/relink/internal/cli"

func main() {
	cli.Execute()
}
