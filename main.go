package main

import "github.com/kamal-hamza/tmedia/cmd"

func main() {
	cmd.Execute()
}
