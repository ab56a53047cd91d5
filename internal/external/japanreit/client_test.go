package japanreit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/wonny/jreit-finder/pkg/config"
	"github.com/wonny/jreit-finder/pkg/httputil"
	"github.com/wonny/jreit-finder/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	httpClient := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(httpClient, logger.Nop(), server.URL)
}

func TestClient_FetchTable_DecodesShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(samplePage)
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(encoded))
	})

	table, err := client.FetchTable(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "日本ビルファンド投資法人", table[0].Name)
}

func TestClient_FetchTable_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchTable(context.Background())
	assert.Error(t, err)
}

func TestNewClient_DefaultURL(t *testing.T) {
	client := NewClient(nil, logger.Nop(), "")
	assert.Equal(t, DefaultURL, client.Source())
}
