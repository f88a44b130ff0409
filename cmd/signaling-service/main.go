// Package main — entry point for signaling-service (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/pairwave/signaling-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
