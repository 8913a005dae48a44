package ebloc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ebloc-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const fakeLoginPage = `<!DOCTYPE html>
<html><head><title>E-bloc.ro</title></head>
<body><div id="content"><h2>Acces online proprietari</h2></div></body></html>`

const fakeRejectPage = `<!DOCTYPE html>
<html><body><form name="login">Date de autentificare gresite</form></body></html>`

func newFakePortal(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("pUser") == "owner@example.com" && r.FormValue("pPass") == "hunter2" {
			w.Write([]byte(fakeLoginPage))
			return
		}
		w.Write([]byte(fakeRejectPage))
	})
	mux.HandleFunc("/ajax/AjaxGetAvizierLuni.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "12", r.FormValue("pIdAsoc"))
		require.Equal(t, "345", r.FormValue("pIdAp"))
		w.Write([]byte(`{
			"10": {"luna": "2024-01", "open": "0"},
			"0": {"luna": "2024-11", "open": "1"},
			"2": {"luna": "2024-09", "open": "0"},
			"1": {"luna": "2024-10", "open": "0"}
		}`))
	})
	mux.HandleFunc("/ajax/AjaxGetHomeApInfo.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2024-10", r.FormValue("pLuna"))
		w.Write([]byte(`{"1": {"cod_client": "1234", "ap": "7", "datorie": "123456"}}`))
	})
	mux.HandleFunc("/ajax/AjaxGetIndexContoare.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/ajax/AjaxGetPlatiChitante.php", func(w http.ResponseWriter, r *http.Request) {
		// what the portal serves once the session cookie dies
		w.Write([]byte(fakeRejectPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ebloc")
	defer cleanup()

	srv := newFakePortal(t)
	client := newTestClient(t, srv.URL)

	err := client.Login(context.Background(), "owner@example.com", "hunter2")
	require.NoError(t, err)

	err = client.Login(context.Background(), "owner@example.com", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestFetchMonthsDocumentOrder(t *testing.T) {
	srv := newFakePortal(t)
	client := newTestClient(t, srv.URL)

	acct := Account{AssociationId: "12", ApartmentId: "345"}
	months, err := client.FetchMonths(context.Background(), acct)
	require.NoError(t, err)

	require.Equal(t, MonthList{
		{Month: "2024-11", Open: "1"},
		{Month: "2024-10", Open: "0"},
		{Month: "2024-09", Open: "0"},
		{Month: "2024-01", Open: "0"},
	}, months)

	active, ok := months.Active()
	require.True(t, ok)
	require.Equal(t, "2024-10", active)
}

func TestFetchDatasetErrors(t *testing.T) {
	srv := newFakePortal(t)
	client := newTestClient(t, srv.URL)
	acct := Account{AssociationId: "12", ApartmentId: "345"}

	home, err := client.FetchHome(context.Background(), acct, "2024-10")
	require.NoError(t, err)
	require.Equal(t, "1234", home.Str("1", "cod_client"))
	require.Equal(t, "123456", home.Str("1", "datorie"))

	_, err = client.FetchIndex(context.Background(), acct, "2024-10")
	require.ErrorIs(t, err, ErrStatus)

	// a 200 with the login page instead of JSON is the stale session signal
	_, err = client.FetchReceipts(context.Background(), acct, "2024-10")
	require.ErrorIs(t, err, ErrDecode)
}
