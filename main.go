package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/supabase/siws/cmd"
	"github.com/supabase/siws/internal/api"
	"github.com/supabase/siws/internal/observability"
)

func main() {
	execCtx, execCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer execCancel()

	if err := cmd.RootCommand().ExecuteContext(execCtx); err != nil {
		log.Fatal(err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Minute)
	defer shutdownCancel()

	api.WaitForCleanup(shutdownCtx)
	observability.WaitForCleanup(shutdownCtx)
}
