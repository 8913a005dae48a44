package main

import (
	"flag"
	"net/http"
	"time"

	"ebloc-backend/lib/configutil"
	"ebloc-backend/lib/serviceutil"
	"ebloc-backend/services/ebloc"
)

type ServerConfig struct {
	Port int `json:"port"`
}

type Config struct {
	Portal ebloc.Options `json:"portal"`
	Server ServerConfig  `json:"server"`
	// poll interval in minutes, defaults to 5
	PollIntervalMinutes int `json:"poll_interval_minutes"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	logConfig(cfg)

	coordinator, err := ebloc.NewCoordinator(cfg.Portal)
	if err != nil {
		serviceutil.Fatal("init coordinator", err)
	}

	mux := http.NewServeMux()
	ebloc.RegisterHandlers(mux, coordinator)

	go coordinator.Run(ctx, time.Duration(cfg.PollIntervalMinutes)*time.Minute)

	port := cfg.Server.Port
	if port == 0 {
		port = 8000
	}
	go serviceutil.StartHttpServer(port, mux)
	<-ctx.Done()
}
