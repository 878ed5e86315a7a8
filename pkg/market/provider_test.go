package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"finsight-api/pkg/market/yahoo"
)

func chartServer(t *testing.T, wantRange string, closes []float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantRange != "" {
			require.Equal(t, wantRange, r.URL.Query().Get("range"))
		}
		ts := ""
		cl := ""
		for i, c := range closes {
			if i > 0 {
				ts += ","
				cl += ","
			}
			ts += fmt.Sprintf("%d", 1717200000+int64(i)*86400)
			cl += fmt.Sprintf("%v", c)
		}
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, cl)
	}))
}

func providerFor(srv *httptest.Server) *YahooProvider {
	return NewYahooProvider(WithClient(yahoo.NewClient(yahoo.WithBaseURL(srv.URL))))
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("computes metrics over the trailing week", func(t *testing.T) {
		// ten dailies; a 7d period must use only the last seven
		closes := []float64{1, 1, 1, 100, 100, 100, 100, 100, 100, 110}
		srv := chartServer(t, "1mo", closes)
		defer srv.Close()

		m, err := providerFor(srv).Fetch(ctx, "BTC-USD", "7d")
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Equal(t, "BTC-USD", m.Symbol)
		require.Equal(t, 110.0, m.LatestPrice)
		require.InDelta(t, 10.0, m.ChangePercent24h, 1e-9)
		require.InDelta(t, (100*6+110)/7.0, m.AveragePrice7d, 1e-9)
	})

	t.Run("fewer than two closes yields no metrics", func(t *testing.T) {
		srv := chartServer(t, "", []float64{100})
		defer srv.Close()

		m, err := providerFor(srv).Fetch(ctx, "BTC-USD", "7d")
		require.NoError(t, err)
		require.Nil(t, m)
	})

	t.Run("unknown symbol yields no metrics", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}))
		defer srv.Close()

		m, err := providerFor(srv).Fetch(ctx, "FAKE-USD", "7d")
		require.NoError(t, err)
		require.Nil(t, m)
	})

	t.Run("transport failures are errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := providerFor(srv).Fetch(ctx, "BTC-USD", "7d")
		require.Error(t, err)
	})
}

func TestHasData(t *testing.T) {
	ctx := context.Background()

	t.Run("single bar is enough", func(t *testing.T) {
		srv := chartServer(t, "1d", []float64{100})
		defer srv.Close()

		ok, err := providerFor(srv).HasData(ctx, "BTC-USD", "1d")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("no bars", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
		}))
		defer srv.Close()

		ok, err := providerFor(srv).HasData(ctx, "FAKE-USD", "1d")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestRangeFor(t *testing.T) {
	require.Equal(t, "1d", rangeFor(""))
	require.Equal(t, "1d", rangeFor("1d"))
	require.Equal(t, "5d", rangeFor("5d"))
	require.Equal(t, "1mo", rangeFor("7d"))
	require.Equal(t, "1mo", rangeFor("30d"))
}
