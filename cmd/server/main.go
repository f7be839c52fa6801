package main

import "github.com/evencat/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
