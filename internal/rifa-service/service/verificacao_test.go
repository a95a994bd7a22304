package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/entropy"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

func rifaFinalizada(t *testing.T, svc *Service, metodo model.MetodoSorteio, referencia string) *model.Rifa {
	t.Helper()
	rifa := novaRifa(t, svc, 5)
	ctx := context.Background()
	for _, numero := range []int{1, 2, 3} {
		require.NoError(t, svc.VenderBilhete(ctx, "cx-1", rifa.ID, numero, "m-1"))
	}
	_, err := svc.RealizarSorteio(ctx, "cx-1", rifa.ID, metodo, referencia)
	require.NoError(t, err)
	return rifa
}

func TestVerificarSorteio_ExigeFinalizada(t *testing.T) {
	svc, _, _ := newTestService(nil)
	rifa := novaRifa(t, svc, 5)

	_, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.ErrorIs(t, err, rifaerr.ErrRifaNaoFinalizada)
}

func TestVerificarSorteio_IntegridadeOk(t *testing.T) {
	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoRandomOrg: stubProvider{value: 2, source: entropy.SourceExternal},
	})
	rifa := rifaFinalizada(t, svc, model.MetodoRandomOrg, "")

	v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	assert.True(t, v.IntegridadeOk)
	assert.Equal(t, v.HashArmazenado, v.HashCalculado)
	// sorteio único do random.org não é reobtível por design
	assert.Equal(t, FonteNaoVerificavel, v.FonteExternaOk)
	assert.Equal(t, model.MetodoRandomOrg, v.MetodoSorteio)
}

// Adulterar qualquer campo comprometido depois da gravação quebra a
// verificação de integridade.
func TestVerificarSorteio_DetectaAdulteracao(t *testing.T) {
	casos := map[string]func(*model.Rifa){
		"numeroSorteado": func(r *model.Rifa) { r.SorteioResultado.NumeroSorteado = 5 },
		"metodo":         func(r *model.Rifa) { r.SorteioMetodo = model.MetodoNist },
		"referencia":     func(r *model.Rifa) { r.SorteioReferencia = "9999" },
		"dataSorteio":    func(r *model.Rifa) { r.SorteioResultado.DataSorteio = r.SorteioResultado.DataSorteio.Add(time.Minute) },
	}

	for nome, adultera := range casos {
		t.Run(nome, func(t *testing.T) {
			svc, repo, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
				model.MetodoRandomOrg: stubProvider{value: 2, source: entropy.SourceExternal},
			})
			rifa := rifaFinalizada(t, svc, model.MetodoRandomOrg, "")

			repo.mutate("cx-1", rifa.ID, adultera)

			v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
			require.NoError(t, err)
			assert.False(t, v.IntegridadeOk)
			assert.NotEqual(t, v.HashArmazenado, v.HashCalculado)
		})
	}
}

func TestVerificarSorteio_FallbackLocalNaoVerificavel(t *testing.T) {
	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoNist: stubProvider{value: 2, source: entropy.SourceLocalFallback, raw: "local"},
	})
	rifa := rifaFinalizada(t, svc, model.MetodoNist, "")

	v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	assert.True(t, v.IntegridadeOk)
	assert.Equal(t, FonteNaoVerificavel, v.FonteExternaOk)
}

// Sorteio por LOTERIA com referência fixa é determinístico e a fonte
// pública confirma o número na verificação.
func TestVerificarSorteio_LoteriaConfirmada(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numero":2680,"listaDezenas":["04","12","23"]}`))
	}))
	defer srv.Close()
	loteria := entropy.NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoLoteria: loteria,
	})
	rifa := rifaFinalizada(t, svc, model.MetodoLoteria, "2680")

	outra := rifaFinalizada(t, svc, model.MetodoLoteria, "2680")
	r1, err := svc.Buscar(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	r2, err := svc.Buscar(context.Background(), "cx-1", outra.ID)
	require.NoError(t, err)
	// mesma referência, mesmo intervalo => mesmo número sorteado
	assert.Equal(t, r1.SorteioResultado.NumeroSorteado, r2.SorteioResultado.NumeroSorteado)

	v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	assert.True(t, v.IntegridadeOk)
	assert.Equal(t, FonteConfirmada, v.FonteExternaOk)
}

func TestVerificarSorteio_LoteriaDivergente(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numero":2680,"listaDezenas":["04","12","23"]}`))
	}))
	defer srv.Close()
	loteria := entropy.NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	svc, repo, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoLoteria: loteria,
	})
	rifa := rifaFinalizada(t, svc, model.MetodoLoteria, "2680")

	repo.mutate("cx-1", rifa.ID, func(r *model.Rifa) {
		r.SorteioResultado.NumeroSorteado = r.SorteioResultado.NumeroSorteado%5 + 1
	})

	v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	assert.False(t, v.IntegridadeOk)
	assert.Equal(t, FonteDivergente, v.FonteExternaOk)
}

func TestVerificarSorteio_LoteriaIndisponivel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numero":2680,"listaDezenas":["04","12","23"]}`))
	}))
	loteria := entropy.NewLoteriaProvider(zap.NewNop(), srv.URL, time.Second, nil)

	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoLoteria: loteria,
	})
	rifa := rifaFinalizada(t, svc, model.MetodoLoteria, "2680")

	// fonte some depois do sorteio
	srv.Close()

	v, err := svc.VerificarSorteio(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)
	assert.True(t, v.IntegridadeOk)
	assert.Equal(t, FonteIndisponivel, v.FonteExternaOk)
}
