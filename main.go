package main

import "fliprotate/cmd"

func main() {
	cmd.Execute()
}
