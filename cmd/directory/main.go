package main

import "github.com/Skotchmaster/local_directory/cmd/directory/commands"

func main() {
	commands.Execute()
}
