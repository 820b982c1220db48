package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.ExecuteContext(ctx)
}
