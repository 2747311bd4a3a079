package main

import "github.com/rustyeddy/marketinsight/internal/cli"

func main() {
	cli.Execute()
}
