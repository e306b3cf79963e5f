package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLens/internal/model"
)

const yahooBody = `{"chart":{"result":[{"timestamp":[1704412800,1704240000,1704326400],
"indicators":{"quote":[{"open":[102,100,null],"high":[103,101,null],"low":[101,99,null],
"close":[102.5,100.5,null],"volume":[1200,1000,null]}]}}],"error":null}}`

func newYahooServer(t *testing.T, status int, body string) (*YahooFetcher, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &got
}

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	f, req := newYahooServer(t, http.StatusOK, yahooBody)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	bars, err := f.FetchDailyBars(context.Background(), "GOOG", start, end)
	require.NoError(t, err)

	// null bar skipped, remaining sorted by time
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 102.5, bars[1].Close)
	assert.Equal(t, 1200.0, bars[1].Volume)
	assert.Equal(t, time.UTC, bars[0].Time.Location())

	assert.Equal(t, "/v8/finance/chart/GOOG", req.URL.Path)
	assert.Equal(t, "1d", req.URL.Query().Get("interval"))
	assert.Equal(t, "1704067200", req.URL.Query().Get("period1"))
	assert.Equal(t, "1704844800", req.URL.Query().Get("period2"))
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	f, req := newYahooServer(t, http.StatusOK, yahooBody)
	_, err := f.FetchDailyBars(context.Background(), "SPX500", time.Unix(0, 0), time.Unix(86400, 0))
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", req.URL.Path)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http 404", http.StatusNotFound, `{}`, model.ErrSymbolNotFound},
		{"chart not found", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, model.ErrSymbolNotFound},
		{"server error", http.StatusInternalServerError, `oops`, model.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newYahooServer(t, tt.status, tt.body)
			_, err := f.FetchDailyBars(context.Background(), "ZZZZ", time.Unix(0, 0), time.Unix(86400, 0))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestYahooFetcher_EmptyResult(t *testing.T) {
	f, _ := newYahooServer(t, http.StatusOK, `{"chart":{"result":[],"error":null}}`)
	bars, err := f.FetchDailyBars(context.Background(), "GOOG", time.Unix(0, 0), time.Unix(86400, 0))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = url
	_, err := f.FetchDailyBars(context.Background(), "GOOG", time.Unix(0, 0), time.Unix(86400, 0))
	assert.ErrorIs(t, err, model.ErrNetwork)
}
