// Package main is the entry point for the relimport CLI.
package main

import "relimport.dev/pkg/relimport/cmd"

func main() {
	cmd.Execute()
}
