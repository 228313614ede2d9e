package main

import "github.com/gradhouse/gradhouse/cmd"

func main() {
	cmd.Execute()
}
