package main

import (
	"context"
	"log/slog"

	"ebloc-backend/lib/configutil"
	"ebloc-backend/lib/restyutil"
	scraper "ebloc-backend/lib/scrapers/ebloc"
	"ebloc-backend/lib/serviceutil"
	"ebloc-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "eblocd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	scraper.SetRestyInstrumentOutput(
		restyutil.NewDirRecorder(".dev/resty/ebloc"),
	)
}

// credentials never hit the logs in full
func logConfig(cfg Config) {
	slog.Debug(
		"loaded portal config",
		"association_id", configutil.Mask(cfg.Portal.AssociationId),
		"apartment_id", configutil.Mask(cfg.Portal.ApartmentId),
		"username", configutil.Mask(cfg.Portal.Username),
		"password", configutil.Mask(cfg.Portal.Password),
	)
}
