package main

import "pinmap/internal/cli"

func main() {
	cli.Execute()
}
