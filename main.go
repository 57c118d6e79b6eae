package main

import "github.com/maxvaer/rexprobe/cmd"

func main() {
	cmd.Execute()
}
