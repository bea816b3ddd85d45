package main

import "github.com/akan-lang/twi/cmd"

var version = "v0.1.0"

func main() {
	cmd.Execute(version)
}
