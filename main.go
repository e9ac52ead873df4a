package main

import (
	"log"

	"github.com/thiagokokada/pushguard/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("pushguard: %v", err)
	}
}
