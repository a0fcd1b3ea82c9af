// Package main is the entry point for the lcovfilter CLI.
package main

import "lcovfilter.dev/pkg/lcovfilter/cmd"

func main() {
	cmd.Execute()
}
