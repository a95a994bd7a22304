// Package entropy normaliza as fontes externas de aleatoriedade atrás de uma
// interface única. Cada fonte tem sua própria política de falha: LOTERIA
// falha duro (auditabilidade depende do concurso público nomeado); RANDOM_ORG
// e NIST degradam para um gerador local marcado como local-fallback.
package entropy

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

const (
	// SourceExternal marca um número obtido da fonte externa nomeada.
	SourceExternal = "external"
	// SourceLocalFallback marca um número gerado localmente após falha da
	// fonte externa; a verificação o reporta como não-verificável.
	SourceLocalFallback = "local-fallback"
)

// Result é o número produzido e a proveniência carregada para o commitment.
type Result struct {
	Value  int
	Source string
	Raw    string
}

// Provider produz um número em [min, max] para a referência dada.
type Provider interface {
	ProduceNumber(ctx context.Context, min, max int, referencia string) (Result, error)
}

// Reverifier é implementado pelas fontes cujo resultado publicado pode ser
// reobtido depois do sorteio (LOTERIA por concurso, NIST por URI do pulso).
// Sorteios únicos do RANDOM_ORG não são reproduzíveis por design.
type Reverifier interface {
	Reverify(ctx context.Context, referencia, raw string, min, max int) (int, error)
}

// Registry mapeia o método de sorteio para sua estratégia. Conjunto fechado:
// uma quarta fonte entra aqui sem tocar o orquestrador.
type Registry struct {
	providers map[model.MetodoSorteio]Provider
}

func NewRegistry(providers map[model.MetodoSorteio]Provider) *Registry {
	return &Registry{providers: providers}
}

// For retorna a estratégia do método ou ErrMetodoInvalido.
func (r *Registry) For(metodo model.MetodoSorteio) (Provider, error) {
	p, ok := r.providers[metodo]
	if !ok {
		return nil, fmt.Errorf("%w: %q", rifaerr.ErrMetodoInvalido, metodo)
	}
	return p, nil
}

var fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rifa_entropia_fallback_total",
	Help: "Sorteios que degradaram para o gerador local por falha da fonte externa",
}, []string{"metodo"})

// localFallback gera um número imprevisível local via crypto/rand.
func localFallback(min, max int) (Result, error) {
	span := big.NewInt(int64(max - min + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return Result{}, fmt.Errorf("gerador local: %w", err)
	}
	return Result{
		Value:  min + int(n.Int64()),
		Source: SourceLocalFallback,
		Raw:    "local",
	}, nil
}

// mapToRange projeta um inteiro arbitrário em [min, max] via módulo.
func mapToRange(n *big.Int, min, max int) int {
	span := big.NewInt(int64(max - min + 1))
	return min + int(new(big.Int).Mod(n, span).Int64())
}
