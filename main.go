package main

import "github.com/agentic-research/sidetree/cmd"

func main() {
	cmd.Execute()
}
