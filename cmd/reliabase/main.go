package main

import "github.com/reliastack/reliabase-engine/internal/cmd"

func main() {
	cmd.Execute()
}
