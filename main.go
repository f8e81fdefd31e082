package main

import "github.com/icco/hathor/cmd"

func main() {
	cmd.Execute()
}
