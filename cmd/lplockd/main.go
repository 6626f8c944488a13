package main

import "github.com/LeJamon/goLPLockd/internal/cli"

func main() {
	cli.Execute()
}
