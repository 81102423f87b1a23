package main

import "integral-solver/cmd"

func main() {
	cmd.Execute()
}
