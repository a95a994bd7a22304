package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/entropy"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

func TestGerarComprovante_ExigeFinalizada(t *testing.T) {
	svc, _, _ := newTestService(nil)
	rifa := novaRifa(t, svc, 5)

	_, err := svc.GerarComprovante(context.Background(), "cx-1", rifa.ID)
	require.ErrorIs(t, err, rifaerr.ErrRifaNaoFinalizada)
}

func TestGerarComprovante_EmbuteCamposDoSorteio(t *testing.T) {
	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoRandomOrg: stubProvider{value: 2, source: entropy.SourceExternal},
	})
	rifa := rifaFinalizada(t, svc, model.MetodoRandomOrg, "")

	doc, err := svc.GerarComprovante(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)

	var c comprovanteDoc
	require.NoError(t, json.Unmarshal([]byte(doc), &c))
	assert.Equal(t, "comprovante-v1", c.Versao)
	assert.Equal(t, rifa.ID, c.RifaID)
	assert.Equal(t, 2, c.NumeroSorteado)
	assert.Equal(t, "RANDOM_ORG", c.Metodo)
	assert.NotEmpty(t, c.VerificacaoHash)
	require.NotNil(t, c.NumeroVencedor)
	assert.Equal(t, 2, *c.NumeroVencedor)
	assert.Equal(t, "m-1", c.MembroVencedor)
}

// Geração é idempotente: chamadas repetidas devolvem o mesmo documento.
func TestGerarComprovante_Idempotente(t *testing.T) {
	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoRandomOrg: stubProvider{value: 3, source: entropy.SourceExternal},
	})
	rifa := rifaFinalizada(t, svc, model.MetodoRandomOrg, "")
	ctx := context.Background()

	primeiro, err := svc.GerarComprovante(ctx, "cx-1", rifa.ID)
	require.NoError(t, err)
	segundo, err := svc.GerarComprovante(ctx, "cx-1", rifa.ID)
	require.NoError(t, err)

	assert.Equal(t, primeiro, segundo)
}

func TestGerarComprovante_SemVencedor(t *testing.T) {
	svc, _, _ := newTestService(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoRandomOrg: stubProvider{value: 5, source: entropy.SourceExternal},
	})
	rifa := rifaFinalizada(t, svc, model.MetodoRandomOrg, "") // vendidos {1,2,3}, sorteado 5

	doc, err := svc.GerarComprovante(context.Background(), "cx-1", rifa.ID)
	require.NoError(t, err)

	var c comprovanteDoc
	require.NoError(t, json.Unmarshal([]byte(doc), &c))
	assert.Nil(t, c.NumeroVencedor)
	assert.Empty(t, c.MembroVencedor)
}
