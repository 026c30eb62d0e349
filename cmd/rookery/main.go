package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	rookerycmd "github.com/louisbranch/rookery/internal/cmd/rookery"
)

// main runs one experiment or a Lua scenario batch and prints the results.
func main() {
	cfg, err := rookerycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ROOKERY] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rookerycmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
}
