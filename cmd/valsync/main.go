package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/teltech/logger"
	"github.com/valsync/valsync"
)

func main() {
	once := flag.Bool("once", false, "run a single ETL cycle and exit")
	flag.Parse()

	// A missing .env file is fine, config has defaults for everything
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := valsync.NewConfig()
	if err != nil {
		log.Errorf("Invalid config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := valsync.New(ctx, cfg)
	if err != nil {
		log.Errorf("Startup failed: %v", err)
		os.Exit(1)
	}
	defer v.Shutdown()

	if *once || cfg.Schedule.Interval <= 0 {
		if err := v.Run(ctx); err != nil {
			log.Errorf("Run failed: %v", err)
			v.Shutdown()
			os.Exit(1)
		}
		return
	}

	if err := v.RunScheduled(ctx); err != nil {
		log.Errorf("Scheduler exited with error: %v", err)
		v.Shutdown()
		os.Exit(1)
	}
}
