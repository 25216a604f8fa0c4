package main

import "github.com/goblinsan/gh-milestone-tracker/cmd/gh-milestone-tracker/commands"

func main() {
	commands.Execute()
}
