package ebloc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadingsBeforeFirstRefresh(t *testing.T) {
	portal := newFakePortal(t)
	c := newTestCoordinator(t, portal)

	readings := Readings(c)
	require.Len(t, readings, len(Sensors))
	for _, r := range readings {
		require.False(t, r.Available)
	}
}

func TestSensorsEndpoint(t *testing.T) {
	portal := newFakePortal(t)
	c := newTestCoordinator(t, portal)

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	mux := http.NewServeMux()
	RegisterHandlers(mux, c)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/v1/sensors")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var readings []SensorReading
	err = json.NewDecoder(res.Body).Decode(&readings)
	require.NoError(t, err)
	require.Len(t, readings, len(Sensors))

	byKey := map[string]SensorReading{}
	for _, r := range readings {
		byKey[r.Key] = r
	}
	require.True(t, byKey["restanta"].Available)
	require.Equal(t, 1234.56, byKey["restanta"].Value)
	require.Equal(t, "2024-10", byKey["luna_curenta"].Value)

	refresh, err := http.Post(srv.URL+"/api/v1/refresh", "", nil)
	require.NoError(t, err)
	refresh.Body.Close()
	require.Equal(t, http.StatusNoContent, refresh.StatusCode)
}
