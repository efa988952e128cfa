package main

import "taskboard/cmd"

func main() {
	cmd.Run()
}
