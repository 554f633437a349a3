package main

import "github.com/testbeacon/testbeacon/cmd"

func main() {
	cmd.Execute()
}
