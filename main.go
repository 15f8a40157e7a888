// Package main is the entry point for the pyskel CLI.
package main

import "pyskel.dev/pkg/pyskel/cmd"

func main() {
	cmd.Execute()
}
