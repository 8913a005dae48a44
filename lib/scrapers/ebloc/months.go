package ebloc

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

type MonthEntry struct {
	// billing period identifier, e.g. "2024-11"
	Month string
	// "1" while the period is still accepting data, "0" once closed
	Open string
}

// MonthList is the billboard month list in document order. Order matters:
// only the first three entries take part in active month selection.
type MonthList []MonthEntry

// Active returns the billing period a refresh should scope its data
// fetches to: the first closed month among the first three entries,
// falling back to the very first entry when none is closed. Reports
// false on an empty list.
func (l MonthList) Active() (string, bool) {
	if len(l) == 0 {
		return "", false
	}
	head := l
	if len(head) > 3 {
		head = head[:3]
	}
	for _, entry := range head {
		if entry.Open == "0" {
			return entry.Month, true
		}
	}
	return head[0].Month, true
}

func decodeMonthList(body []byte) (MonthList, error) {
	var raw map[string]struct {
		Luna string `json:"luna"`
		Open string `json:"open"`
	}
	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, err
	}

	// the portal keys entries by their numeric position in the document,
	// so sorting the keys numerically recovers document order
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareIndexKeys)

	out := make(MonthList, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthEntry{
			Month: raw[k].Luna,
			Open:  raw[k].Open,
		})
	}
	return out, nil
}

func compareIndexKeys(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}
