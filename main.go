package main

import "github.com/rdelattre/nfosync/internal/cmd"

func main() {
	cmd.Execute()
}
