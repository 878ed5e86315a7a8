package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight-api/pkg/market"
)

type memSymbols struct {
	mu      sync.Mutex
	symbols []string
	saves   int

	loadErr error
	saveErr error
}

func (m *memSymbols) Load(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]string(nil), m.symbols...), nil
}

func (m *memSymbols) Save(_ context.Context, symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.symbols = append([]string(nil), symbols...)
	m.saves++
	return nil
}

// fakeProvider answers existence checks from a fixed set and is never
// used for metric fetches in these tests.
type fakeProvider struct {
	known   map[string]bool
	hasErr  error
	fetches int
}

func (f *fakeProvider) Fetch(context.Context, string, string) (*market.Metrics, error) {
	f.fetches++
	return nil, nil
}

func (f *fakeProvider) HasData(_ context.Context, symbol, _ string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.known[symbol], nil
}

func knownProvider(symbols ...string) *fakeProvider {
	known := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		known[s] = true
	}
	return &fakeProvider{known: known}
}

func TestValidateFormat(t *testing.T) {
	cases := []struct {
		symbol string
		want   bool
	}{
		{"BTC-USD", true},
		{"ETH-USD", true},
		{"btc-USD", true}, // suffix rule wins
		{"TSLA", true},
		{"BRK.B", true},
		{"tsla", false},
		{"Tsla", false},
		{"btc-usd", false},
		{"1234", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.symbol), func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateFormat(tc.symbol))
		})
	}
}

func TestListSymbols(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds defaults on empty store", func(t *testing.T) {
		repo := &memSymbols{}
		r := New(repo, knownProvider())

		got, err := r.ListSymbols(ctx)
		require.NoError(t, err)
		require.Equal(t, DefaultSymbols, got)
		require.Equal(t, 1, repo.saves)

		// second call reads the persisted set, no re-seed
		got, err = r.ListSymbols(ctx)
		require.NoError(t, err)
		require.Equal(t, DefaultSymbols, got)
		require.Equal(t, 1, repo.saves)
	})

	t.Run("returns stored set untouched", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"AAPL"}}
		r := New(repo, knownProvider())

		got, err := r.ListSymbols(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"AAPL"}, got)
		require.Zero(t, repo.saves)
	})

	t.Run("propagates load failures", func(t *testing.T) {
		repo := &memSymbols{loadErr: errors.New("db down")}
		r := New(repo, knownProvider())
		_, err := r.ListSymbols(ctx)
		require.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("admits valid symbols and unions with existing", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"BTC-USD", "TSLA"}}
		r := New(repo, knownProvider("AAPL", "SOL-USD"))

		got, err := r.Register(ctx, []string{"AAPL", "SOL-USD"})
		require.NoError(t, err)
		require.Equal(t, []string{"BTC-USD", "TSLA", "AAPL", "SOL-USD"}, got)
	})

	t.Run("duplicates are kept once", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider("TSLA", "AAPL"))

		got, err := r.Register(ctx, []string{"TSLA", "AAPL", "AAPL"})
		require.NoError(t, err)
		require.Equal(t, []string{"TSLA", "AAPL"}, got)
	})

	t.Run("format failures are filtered silently", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider("AAPL"))

		got, err := r.Register(ctx, []string{"aapl", "AAPL"})
		require.NoError(t, err)
		require.Equal(t, []string{"TSLA", "AAPL"}, got)
	})

	t.Run("nothing admissible leaves the set unchanged", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider())

		got, err := r.Register(ctx, []string{"aapl", "1234"})
		require.NoError(t, err)
		require.Empty(t, got)
		require.Zero(t, repo.saves)
	})

	t.Run("existence failures are filtered", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider("AAPL"))

		got, err := r.Register(ctx, []string{"AAPL", "FAKE-USD"})
		require.NoError(t, err)
		require.Equal(t, []string{"TSLA", "AAPL"}, got)
	})

	t.Run("provider errors count as nonexistent", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, &fakeProvider{hasErr: errors.New("network")})

		got, err := r.Register(ctx, []string{"AAPL"})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("save failures surface", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}, saveErr: errors.New("db down")}
		r := New(repo, knownProvider("AAPL"))
		_, err := r.Register(ctx, []string{"AAPL"})
		require.Error(t, err)
	})

	t.Run("concurrent registrations union", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		symbols := make([]string, 20)
		for i := range symbols {
			symbols[i] = fmt.Sprintf("SYM%d-USD", i)
		}
		r := New(repo, knownProvider(symbols...))

		var wg sync.WaitGroup
		for _, s := range symbols {
			wg.Add(1)
			go func(s string) {
				defer wg.Done()
				_, err := r.Register(ctx, []string{s})
				assert.NoError(t, err)
			}(s)
		}
		wg.Wait()

		got, err := r.ListSymbols(ctx)
		require.NoError(t, err)
		want := append([]string{"TSLA"}, symbols...)
		require.ElementsMatch(t, want, got)
	})
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("admits a known symbol", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider("SOL-USD"))

		require.NoError(t, r.Add(ctx, "SOL-USD"))
		got, err := r.ListSymbols(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"TSLA", "SOL-USD"}, got)
	})

	t.Run("rejects bad format", func(t *testing.T) {
		r := New(&memSymbols{}, knownProvider())
		err := r.Add(ctx, "sol")
		require.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("rejects unknown symbol", func(t *testing.T) {
		r := New(&memSymbols{}, knownProvider())
		err := r.Add(ctx, "FAKE-USD")
		require.ErrorIs(t, err, ErrUnknownSymbol)
	})

	t.Run("re-adding is a no-op", func(t *testing.T) {
		repo := &memSymbols{symbols: []string{"TSLA"}}
		r := New(repo, knownProvider("TSLA"))

		require.NoError(t, r.Add(ctx, "TSLA"))
		got, err := r.ListSymbols(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"TSLA"}, got)
	})
}
