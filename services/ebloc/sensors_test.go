package ebloc

import (
	"fmt"
	"testing"

	scraper "ebloc-backend/lib/scrapers/ebloc"

	"github.com/stretchr/testify/require"
)

func sensorByKey(t *testing.T, key string) Sensor {
	for _, s := range Sensors {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("no sensor with key %q", key)
	return Sensor{}
}

func fixtureSnapshot() Snapshot {
	return Snapshot{
		Home: scraper.RawMap{
			"1": map[string]any{
				"cod_client":            "8842",
				"ap":                    "7",
				"nr_pers_afisat":        "3",
				"datorie":               "123456",
				"ultima_zi_plata":       "2024-11-25",
				"contoare_citite":       "1",
				"citire_contoare_start": "2024-11-20",
				"citire_contoare_end":   "2024-11-30",
				"luna_veche":            "2024-09",
				"nivel_restanta":        "1",
			},
		},
		Index: scraper.RawMap{
			"2": map[string]any{"index_nou": "1234"},
			"3": map[string]any{"index_nou": "not a number"},
		},
		Receipts: scraper.RawMap{
			"1": map[string]any{"numar": "100234", "data": "2024-10-12", "suma": "45600"},
			"2": map[string]any{"numar": "100911", "data": "2024-11-02", "suma": "77856"},
		},
		Months: scraper.MonthList{
			{Month: "2024-11", Open: "1"},
			{Month: "2024-10", Open: "0"},
		},
		ActiveMonth: "2024-10",
	}
}

func TestMonetaryProjection(t *testing.T) {
	snap := fixtureSnapshot()

	value := sensorByKey(t, "restanta").Value(snap)
	require.Equal(t, 1234.56, value)
	require.Equal(t, "1234.56", fmt.Sprintf("%.2f", value))

	// absent raw value displays as 0.00, not an error
	value = sensorByKey(t, "restanta").Value(Snapshot{})
	require.Equal(t, 0.0, value)
	require.Equal(t, "0.00", fmt.Sprintf("%.2f", value))
}

func TestVolumetricProjection(t *testing.T) {
	snap := fixtureSnapshot()

	require.Equal(t, 1.234, sensorByKey(t, "apa_rece").Value(snap))
	// non-numeric raw value reads as nil, never a panic
	require.Nil(t, sensorByKey(t, "apa_calda").Value(snap))
	// absent readings read as 0
	require.Equal(t, 0.0, sensorByKey(t, "caldura").Value(snap))
}

func TestClientSensorAttributes(t *testing.T) {
	snap := fixtureSnapshot()
	client := sensorByKey(t, "client")

	require.Equal(t, "8842", client.Value(snap))

	attrs := client.Attributes(snap)
	require.Equal(t, "7", attrs["Apartament"])
	require.Equal(t, "3", attrs["Persoane"])
	require.Equal(t, "1234.56 RON", attrs["Restanță"])
	require.Equal(t, "Da", attrs["Contor trimis"])
	require.Equal(t, "2024-11-20 - 2024-11-30", attrs["Perioadă citire"])
}

func TestReceiptsProjection(t *testing.T) {
	snap := fixtureSnapshot()
	plati := sensorByKey(t, "plati")

	require.Equal(t, 2, plati.Value(snap))

	attrs := plati.Attributes(snap)
	require.Equal(t, "100234 - 2024-10-12 - 456.00 RON", attrs["Chitanța 1"])
	require.Equal(t, "100911 - 2024-11-02 - 778.56 RON", attrs["Chitanța 2"])
}

func TestActiveMonthProjection(t *testing.T) {
	require.Equal(t, "2024-10", sensorByKey(t, "luna_curenta").Value(fixtureSnapshot()))
	require.Equal(t, "", sensorByKey(t, "luna_curenta").Value(Snapshot{}))
}

func TestAllSensorsTotalOnEmptySnapshot(t *testing.T) {
	for _, sensor := range Sensors {
		require.NotPanics(t, func() {
			sensor.Value(Snapshot{})
			if sensor.Attributes != nil {
				sensor.Attributes(Snapshot{})
			}
		}, "sensor %s should tolerate an empty snapshot", sensor.Key)
	}
}
