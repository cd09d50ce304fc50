package main

import (
	"github.com/ribgsilva/note-sync/app/cmd/schema"
	"os"
)

func listCommands() {
	println("Usage: cmd <group> <command>")
	println("\tschema\t\t\t- Database schema commands")
}

func main() {
	if len(os.Args) < 2 {
		listCommands()
		return
	}
	switch os.Args[1] {
	case "schema":
		schema.Run(os.Args[2:])
	default:
		listCommands()
	}
}
