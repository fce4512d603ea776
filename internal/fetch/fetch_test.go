package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsff-cap-mcp/internal/store"
)

const batchBody = `{
  "spreadsheetId": "sheet1",
  "valueRanges": [
    {"range": "Rosters!A1:K1000", "majorDimension": "ROWS", "values": [
      ["Team", " Player Name", "AAV", "On Roster Flag"],
      ["Alpha", "X", "$40", "TRUE"],
      [],
      ["Alpha", "Y", 30, true]
    ]},
    {"range": "'Owners2025'!A1:F1000", "majorDimension": "ROWS", "values": [
      ["team_name", "discord user"],
      ["Alpha", "alpha#1"]
    ]},
    {"range": "Rules!A1:B995", "majorDimension": "ROWS"}
  ]
}`

func TestSheetsProvider_Pull(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spreadsheets/sheet1/values:batchGet", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(batchBody))
	}))
	defer srv.Close()

	st := store.NewJSONStore(t.TempDir())
	c := NewClient(srv.Client(), st, nil)
	c.BaseURL = srv.URL
	c.APIKey = "k123"

	p := &SheetsProvider{Client: c, SheetID: "sheet1", Ranges: []string{"Rosters!A1:K1000", "Rules!A1:B995"}}
	tabs, err := p.Pull(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Rosters!A1:K1000", "Rules!A1:B995"}, gotQuery["ranges"])
	assert.Equal(t, []string{"ROWS"}, gotQuery["majorDimension"])
	assert.Equal(t, []string{"k123"}, gotQuery["key"])

	require.Len(t, tabs["Rosters"], 2, "blank row dropped")
	assert.Equal(t, "Y", tabs["Rosters"][1][" Player Name"])
	assert.Equal(t, "30", tabs["Rosters"][1]["AAV"])
	assert.Equal(t, "TRUE", tabs["Rosters"][1]["On Roster Flag"])
	assert.Equal(t, "alpha#1", tabs["Owners2025"][0]["discord user"])
	assert.NotContains(t, tabs, "Rules", "empty range skipped")

	assert.True(t, st.Exists("sheets/sheet1/batchGet.json"), "raw response cached")
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), nil, nil)
	c.BaseURL = srv.URL
	_, err := c.BatchGet(context.Background(), "sheet1", []string{"Rosters!A1:B2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "denied")
}

func TestClient_BreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var states []int
	c := NewClient(srv.Client(), nil, func(name string, state int) {
		assert.Equal(t, "sheets", name)
		states = append(states, state)
	})
	c.BaseURL = srv.URL

	for i := 0; i < 3; i++ {
		_, err := c.FetchRaw(context.Background(), "/x", nil, "")
		require.Error(t, err)
	}
	_, err := c.FetchRaw(context.Background(), "/x", nil, "")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []int{int(gobreaker.StateOpen)}, states)
}

func TestValueRange_Strings(t *testing.T) {
	vr := ValueRange{Values: [][]any{{"a", 1250000.0, false, nil, 0.5}}}
	assert.Equal(t, [][]string{{"a", "1250000", "FALSE", "", "0.5"}}, vr.Strings())
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()

	t.Run("api key", func(t *testing.T) {
		hc, key, err := HTTPClient(ctx, Credentials{APIKey: "abc"}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "abc", key)
		assert.Equal(t, time.Second, hc.Timeout)
	})

	t.Run("none", func(t *testing.T) {
		_, _, err := HTTPClient(ctx, Credentials{}, time.Second)
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("bad base64", func(t *testing.T) {
		_, _, err := HTTPClient(ctx, Credentials{JSONBase64: "%%%"}, time.Second)
		assert.Error(t, err)
	})

	t.Run("service account wins over api key", func(t *testing.T) {
		sa := `{"type":"service_account","client_email":"bot@example.iam.gserviceaccount.com","private_key":"unused","token_uri":"https://oauth2.example/token"}`
		creds := Credentials{JSONBase64: base64.StdEncoding.EncodeToString([]byte(sa)), APIKey: "abc"}
		hc, key, err := HTTPClient(ctx, creds, 5*time.Second)
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.Equal(t, 5*time.Second, hc.Timeout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := HTTPClient(ctx, Credentials{File: "/nonexistent/sa.json"}, time.Second)
		assert.Error(t, err)
	})
}
