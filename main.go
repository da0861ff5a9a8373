package main

import "doc-narrator/pkg/cli"

func main() {
	cli.Execute()
}
