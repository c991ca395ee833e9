package main

import "github.com/rustyeddy/candlewaker/internal/cli"

func main() {
	cli.Execute()
}
