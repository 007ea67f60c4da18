package main

import "github.com/TheGoumble/secure-streaming/internal/cli"

func main() {
	cli.Execute()
}
