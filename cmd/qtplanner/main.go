package main

import (
	"log"
	_ "time/tzdata"

	"github.com/nhle/qtplanner/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
