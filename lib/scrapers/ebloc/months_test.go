package ebloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActiveMonth(t *testing.T) {
	testCases := []struct {
		name   string
		months MonthList
		expect string
		ok     bool
	}{
		{
			name:   "empty list",
			months: MonthList{},
			expect: "",
			ok:     false,
		},
		{
			name: "all open falls back to first entry",
			months: MonthList{
				{Month: "2024-11", Open: "1"},
				{Month: "2024-10", Open: "1"},
				{Month: "2024-09", Open: "1"},
			},
			expect: "2024-11",
			ok:     true,
		},
		{
			name: "first closed entry wins",
			months: MonthList{
				{Month: "2024-11", Open: "1"},
				{Month: "2024-10", Open: "0"},
				{Month: "2024-09", Open: "0"},
			},
			expect: "2024-10",
			ok:     true,
		},
		{
			name: "closed entries beyond the first three are ignored",
			months: MonthList{
				{Month: "2024-11", Open: "1"},
				{Month: "2024-10", Open: "1"},
				{Month: "2024-09", Open: "1"},
				{Month: "2024-08", Open: "0"},
			},
			expect: "2024-11",
			ok:     true,
		},
		{
			name: "single closed entry",
			months: MonthList{
				{Month: "2024-11", Open: "0"},
			},
			expect: "2024-11",
			ok:     true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			active, ok := test.months.Active()
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expect, active)
		})
	}
}

func TestDecodeMonthListRejectsHtml(t *testing.T) {
	_, err := decodeMonthList([]byte("<html><body>login</body></html>"))
	require.Error(t, err)
}

func TestRawMapTotality(t *testing.T) {
	var nilMap RawMap
	require.Equal(t, "", nilMap.Str("1", "datorie"))
	require.Nil(t, nilMap.Section("1"))

	m := RawMap{
		"1": map[string]any{"datorie": "123456", "nr_pers": float64(3)},
		"2": "not a section",
	}
	require.Equal(t, "123456", m.Str("1", "datorie"))
	require.Equal(t, "3", m.Str("1", "nr_pers"))
	require.Equal(t, "", m.Str("1", "missing"))
	require.Equal(t, "", m.Str("2", "anything"))
	require.Equal(t, []string{"1", "2"}, m.Keys())
}
