package main

import (
	"log"

	"github.com/thiagokokada/diffy-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("diffy-go: %v", err)
	}
}
