package service

import (
	"context"
	"time"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/entropy"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/hash"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

// FonteExternaStatus é o resultado da checagem contra a fonte pública.
type FonteExternaStatus string

const (
	// FonteConfirmada: a fonte pública reproduziu o número sorteado
	FonteConfirmada FonteExternaStatus = "confirmada"
	// FonteDivergente: a fonte pública devolveu outro número
	FonteDivergente FonteExternaStatus = "divergente"
	// FonteIndisponivel: a fonte pública não respondeu; tentar de novo depois
	FonteIndisponivel FonteExternaStatus = "indisponivel"
	// FonteNaoVerificavel: o registro não é reobtível (sorteio único do
	// random.org ou resultado gerado por fallback local)
	FonteNaoVerificavel FonteExternaStatus = "nao_verificavel"
)

// Verificacao é o laudo de auditoria de um sorteio finalizado.
type Verificacao struct {
	IntegridadeOk   bool                `json:"integridadeOk"`
	FonteExternaOk  FonteExternaStatus  `json:"fonteExternaOk"`
	MetodoSorteio   model.MetodoSorteio `json:"metodoSorteio"`
	HashArmazenado  string              `json:"hashArmazenado"`
	HashCalculado   string              `json:"hashCalculado"`
	DataVerificacao time.Time           `json:"dataVerificacao"`
}

// VerificarSorteio recomputa o hash de verificação a partir dos campos
// armazenados e, quando a fonte permite, reobtém o registro público para
// confirmar reprodutibilidade. Somente leitura; nunca muda estado.
func (s *Service) VerificarSorteio(ctx context.Context, caixinhaID, rifaID string) (*Verificacao, error) {
	rifa, err := s.repo.Get(ctx, caixinhaID, rifaID)
	if err != nil {
		return nil, err
	}
	if rifa.Status != model.StatusFinalizada || rifa.SorteioResultado == nil {
		return nil, rifaerr.ErrRifaNaoFinalizada
	}
	resultado := rifa.SorteioResultado

	recomputado := hash.Commitment{
		CaixinhaID:     rifa.CaixinhaID,
		RifaID:         rifa.ID,
		NumeroSorteado: resultado.NumeroSorteado,
		Metodo:         string(rifa.SorteioMetodo),
		Referencia:     rifa.SorteioReferencia,
		DataSorteio:    resultado.DataSorteio,
	}.Sum()

	v := &Verificacao{
		IntegridadeOk:   recomputado == resultado.VerificacaoHash,
		FonteExternaOk:  s.verificarFonte(ctx, rifa),
		MetodoSorteio:   rifa.SorteioMetodo,
		HashArmazenado:  resultado.VerificacaoHash,
		HashCalculado:   recomputado,
		DataVerificacao: s.agora().UTC(),
	}

	integridade := "ok"
	if !v.IntegridadeOk {
		integridade = "violada"
	}
	verificacoesTotal.WithLabelValues(integridade).Inc()
	return v, nil
}

// verificarFonte confere o número sorteado contra o registro público.
// Só fontes reobtíveis com resultado external entram na checagem.
func (s *Service) verificarFonte(ctx context.Context, rifa *model.Rifa) FonteExternaStatus {
	resultado := rifa.SorteioResultado
	if resultado.FonteEntropia != entropy.SourceExternal {
		return FonteNaoVerificavel
	}

	provider, err := s.entropy.For(rifa.SorteioMetodo)
	if err != nil {
		return FonteNaoVerificavel
	}
	rv, ok := provider.(entropy.Reverifier)
	if !ok {
		return FonteNaoVerificavel
	}

	valor, err := rv.Reverify(ctx, rifa.SorteioReferencia, resultado.ReferenciaBruta, 1, rifa.QuantidadeBilhetes)
	if err != nil {
		return FonteIndisponivel
	}
	if valor != resultado.NumeroSorteado {
		return FonteDivergente
	}
	return FonteConfirmada
}
