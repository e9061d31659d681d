package main

import "github.com/moradology/pith/internal/cli"

func main() {
	cli.Execute()
}
