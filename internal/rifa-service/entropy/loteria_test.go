package entropy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

// fakeCache implementa Cache em memória para os testes.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
}

func loteriaFake(t *testing.T, concurso string, body string, status int) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/"+concurso, r.URL.Path)
		hits++
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLoteria_DerivacaoDeterministica(t *testing.T) {
	srv, _ := loteriaFake(t, "2680", `{"numero":2680,"listaDezenas":["01","02"]}`, http.StatusOK)
	p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	// "01"+"02" = 102; 102 mod 10 = 2; 1 + 2 = 3
	res, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Value)
	assert.Equal(t, SourceExternal, res.Source)
	assert.Equal(t, "concurso=2680;dezenas=01-02", res.Raw)

	// mesma referência, mesmo resultado
	res2, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
	require.NoError(t, err)
	assert.Equal(t, res.Value, res2.Value)
}

func TestLoteria_RespeitaIntervalo(t *testing.T) {
	srv, _ := loteriaFake(t, "9", `{"numero":9,"listaDezenas":["55","60","33"]}`, http.StatusOK)
	p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	res, err := p.ProduceNumber(context.Background(), 1, 7, "9")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Value, 1)
	assert.LessOrEqual(t, res.Value, 7)
}

// LOTERIA nunca degrada para gerador local: o concurso público nomeado é a
// única fonte aceitável.
func TestLoteria_FalhaDura(t *testing.T) {
	t.Run("http 500", func(t *testing.T) {
		srv, _ := loteriaFake(t, "2680", "erro", http.StatusInternalServerError)
		p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)
		_, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
		require.ErrorIs(t, err, rifaerr.ErrFonteExternaIndisponivel)
	})

	t.Run("resposta malformada", func(t *testing.T) {
		srv, _ := loteriaFake(t, "2680", `nao é json`, http.StatusOK)
		p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)
		_, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
		require.ErrorIs(t, err, rifaerr.ErrFonteExternaIndisponivel)
	})

	t.Run("sem dezenas", func(t *testing.T) {
		srv, _ := loteriaFake(t, "2680", `{"numero":2680,"listaDezenas":[]}`, http.StatusOK)
		p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)
		_, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
		require.ErrorIs(t, err, rifaerr.ErrFonteExternaIndisponivel)
	})

	t.Run("servidor fora do ar", func(t *testing.T) {
		p := NewLoteriaProvider(zap.NewNop(), "http://127.0.0.1:1", 200*time.Millisecond, nil)
		_, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
		require.ErrorIs(t, err, rifaerr.ErrFonteExternaIndisponivel)
	})
}

func TestLoteria_CacheEvitaSegundaBusca(t *testing.T) {
	srv, hits := loteriaFake(t, "2680", `{"numero":2680,"listaDezenas":["01","02"]}`, http.StatusOK)
	p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, newFakeCache())

	_, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
	require.NoError(t, err)
	res, err := p.ProduceNumber(context.Background(), 1, 10, "2680")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Value)
	assert.Equal(t, 1, *hits)
}

func TestLoteria_Reverify(t *testing.T) {
	srv, _ := loteriaFake(t, "2680", `{"numero":2680,"listaDezenas":["01","02"]}`, http.StatusOK)
	p := NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	v, err := p.Reverify(context.Background(), "2680", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
