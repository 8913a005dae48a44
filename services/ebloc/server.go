package ebloc

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// SensorReading is one sensor's latest value as served over HTTP.
type SensorReading struct {
	Key        string            `json:"key"`
	Name       string            `json:"name"`
	Icon       string            `json:"icon,omitempty"`
	Unit       string            `json:"unit,omitempty"`
	Value      any               `json:"value"`
	Available  bool              `json:"available"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Readings projects the latest snapshot through the sensor table.
// Before the first successful cycle every reading carries its zero
// value and Available is false.
func Readings(c *Coordinator) []SensorReading {
	var snap Snapshot
	latest, ok := c.Snapshot()
	if ok {
		snap = *latest
	}
	available := ok && c.Healthy()

	out := make([]SensorReading, 0, len(Sensors))
	for _, sensor := range Sensors {
		reading := SensorReading{
			Key:       sensor.Key,
			Name:      sensor.Name,
			Icon:      sensor.Icon,
			Unit:      sensor.Unit,
			Value:     sensor.Value(snap),
			Available: available,
		}
		if sensor.Attributes != nil {
			reading.Attributes = sensor.Attributes(snap)
		}
		out = append(out, reading)
	}
	return out
}

func RegisterHandlers(mux *http.ServeMux, c *Coordinator) {
	mux.HandleFunc("GET /api/v1/sensors", func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "server:GetSensors")
		defer span.End()

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(Readings(c))
		if err != nil {
			slog.WarnContext(ctx, "encode sensor readings", "err", err)
		}
	})

	mux.HandleFunc("POST /api/v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "server:Refresh")
		defer span.End()

		_, err := c.Refresh(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
