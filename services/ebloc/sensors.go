package ebloc

import (
	"fmt"
	"math"
	"strconv"
)

// Sensor is a named read-only projection over a snapshot. Every value
// function is pure and total: missing data reads as the field's zero
// value, never as a panic or an error.
type Sensor struct {
	Key  string
	Name string
	Icon string
	// unit of measurement, empty for plain text values
	Unit       string
	Value      func(Snapshot) any
	Attributes func(Snapshot) map[string]string
}

// Sensors is the full projection table. One table, one generic type;
// the portal's datasets drive which entry reads what.
var Sensors = []Sensor{
	{
		Key:  "client",
		Name: "Date client",
		Icon: "mdi:account-details",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "cod_client")
		},
		Attributes: func(s Snapshot) map[string]string {
			return map[string]string{
				"Apartament":      s.Home.Str("1", "ap"),
				"Persoane":        s.Home.Str("1", "nr_pers_afisat"),
				"Restanță":        lei(s.Home.Str("1", "datorie")) + " RON",
				"Ultima zi plată": s.Home.Str("1", "ultima_zi_plata"),
				"Contor trimis":   yesNo(s.Home.Str("1", "contoare_citite")),
				"Perioadă citire": fmt.Sprintf(
					"%s - %s",
					s.Home.Str("1", "citire_contoare_start"),
					s.Home.Str("1", "citire_contoare_end"),
				),
				"Luna veche":      s.Home.Str("1", "luna_veche"),
				"Nivel restanță":  s.Home.Str("1", "nivel_restanta"),
			}
		},
	},
	{
		Key:  "apa_rece",
		Name: "Apă rece",
		Icon: "mdi:water-pump",
		Unit: "m³",
		Value: func(s Snapshot) any {
			return volume(s.Index.Str("2", "index_nou"))
		},
	},
	{
		Key:  "apa_calda",
		Name: "Apă caldă",
		Icon: "mdi:water-thermometer",
		Unit: "m³",
		Value: func(s Snapshot) any {
			return volume(s.Index.Str("3", "index_nou"))
		},
	},
	{
		Key:  "caldura",
		Name: "Căldură",
		Icon: "mdi:radiator",
		Unit: "kWh",
		Value: func(s Snapshot) any {
			return volume(s.Index.Str("4", "index_nou"))
		},
	},
	{
		Key:  "curent",
		Name: "Curent",
		Icon: "mdi:flash",
		Unit: "kWh",
		Value: func(s Snapshot) any {
			return volume(s.Index.Str("5", "index_nou"))
		},
	},
	{
		Key:  "plati",
		Name: "Plăți",
		Icon: "mdi:receipt",
		Value: func(s Snapshot) any {
			return len(s.Receipts)
		},
		Attributes: func(s Snapshot) map[string]string {
			out := map[string]string{}
			for i, key := range s.Receipts.Keys() {
				out[fmt.Sprintf("Chitanța %d", i+1)] = fmt.Sprintf(
					"%s - %s - %s RON",
					s.Receipts.Str(key, "numar"),
					s.Receipts.Str(key, "data"),
					lei(s.Receipts.Str(key, "suma")),
				)
			}
			return out
		},
	},
	{
		Key:  "apartament",
		Name: "Apartament",
		Icon: "mdi:home",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "ap")
		},
	},
	{
		Key:  "persoane",
		Name: "Persoane",
		Icon: "mdi:account-multiple",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "nr_pers_afisat")
		},
	},
	{
		Key:  "restanta",
		Name: "Restanță",
		Icon: "mdi:cash-remove",
		Unit: "RON",
		Value: func(s Snapshot) any {
			return money(s.Home.Str("1", "datorie"))
		},
	},
	{
		Key:  "ultima_zi",
		Name: "Ultima zi plată",
		Icon: "mdi:calendar-clock",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "ultima_zi_plata")
		},
	},
	{
		Key:  "contor_trimis",
		Name: "Contor trimis",
		Icon: "mdi:send-check",
		Value: func(s Snapshot) any {
			return yesNo(s.Home.Str("1", "contoare_citite"))
		},
	},
	{
		Key:  "citire_start",
		Name: "Începere citire",
		Icon: "mdi:calendar-start",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "citire_contoare_start")
		},
	},
	{
		Key:  "citire_end",
		Name: "Încheiere citire",
		Icon: "mdi:calendar-end",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "citire_contoare_end")
		},
	},
	{
		Key:  "luna_veche",
		Name: "Luna veche",
		Icon: "mdi:calendar-alert",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "luna_veche")
		},
	},
	{
		Key:  "luna_curenta",
		Name: "Luna curentă",
		Icon: "mdi:calendar-month",
		Value: func(s Snapshot) any {
			return s.ActiveMonth
		},
	},
	{
		Key:  "nivel_restanta",
		Name: "Nivel restanță",
		Icon: "mdi:alert-circle",
		Value: func(s Snapshot) any {
			return s.Home.Str("1", "nivel_restanta")
		},
	},
}

// money converts an integer-cents field to lei with two decimals.
// Absent or malformed values read as 0.
func money(raw string) float64 {
	if raw == "" {
		return 0
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return float64(cents) / 100
}

func lei(raw string) string {
	return fmt.Sprintf("%.2f", money(raw))
}

// volume converts a milli-unit meter reading to whole units with three
// decimals. Absent values read as 0, malformed values as nil.
func volume(raw string) any {
	if raw == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return math.Round(f) / 1000
}

func yesNo(raw string) string {
	if raw == "1" {
		return "Da"
	}
	return "Nu"
}
