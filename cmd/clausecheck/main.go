package main

import "github.com/dgallion1/clausecheck/internal/cli"

func main() {
	cli.Execute()
}
