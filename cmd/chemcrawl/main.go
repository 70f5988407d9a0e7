package main

import "github.com/jhyland87/chem-crawler/internal/interfaces/cli"

func main() {
	cli.Execute()
}
