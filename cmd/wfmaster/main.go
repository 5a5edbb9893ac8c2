package main

import "github.com/wangxy/wfmaster/internal/cli"

func main() {
	cli.Execute()
}
