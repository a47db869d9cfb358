package main

import "github.com/valkyraycho/surfrank/cmd"

func main() {
	cmd.Execute()
}
