package main

import "github.com/aalvaropc/docmapr/internal/cli"

func main() {
	cli.Execute()
}
