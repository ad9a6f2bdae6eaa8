package main

import "github.com/bryan-buckman/pressroom/internal/cli"

func main() {
	cli.Execute()
}
