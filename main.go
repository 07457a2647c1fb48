package main

import "github/chapool/go-bridge/cmd"

func main() {
	cmd.Execute()
}
