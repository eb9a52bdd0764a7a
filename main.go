package main

import (
	"teamplayer/cmd"
)

func main() {
	cmd.Execute()
}
