// Package main provides the halcyon CLI.
package main

import "github.com/halcyon-health/halcyon/internal/cli"

func main() {
	cli.Execute()
}
