package ebloc

import (
	"ebloc-backend/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ebloc.lib.scrapers.ebloc")

var instrumentOutput restyutil.Recorder

// SetRestyInstrumentOutput makes clients created afterwards dump full
// HTTP transcripts to `out`.
func SetRestyInstrumentOutput(out restyutil.Recorder) {
	instrumentOutput = out
}
