package main

import "dilr/internal/cli"

func main() {
	cli.Execute()
}
