package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/hash"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
	"github.com/radieske/caixinha-rifa-service/pkg/contracts/events"
)

// RealizarSorteio obtém o número da fonte de entropia, resolve o bilhete
// vencedor, calcula o hash de verificação e finaliza a rifa em uma única
// escrita condicional. A chamada externa acontece antes de qualquer lock:
// um provedor lento atrasa o sorteio mas não bloqueia vendas nem outros
// sorteios. Pode ser repetida com segurança enquanto a rifa seguir ABERTA.
func (s *Service) RealizarSorteio(ctx context.Context, caixinhaID, rifaID string, metodo model.MetodoSorteio, referencia string) (*model.SorteioResultado, error) {
	rifa, err := s.repo.Get(ctx, caixinhaID, rifaID)
	if err != nil {
		return nil, err
	}
	if rifa.Status != model.StatusAberta {
		if rifa.Status == model.StatusFinalizada {
			return nil, rifaerr.ErrSorteioJaRealizado
		}
		return nil, rifaerr.ErrRifaNaoAberta
	}
	if len(rifa.BilhetesVendidos) == 0 {
		return nil, rifaerr.ErrSemBilhetes
	}

	provider, err := s.entropy.For(metodo)
	if err != nil {
		return nil, err
	}
	if metodo == model.MetodoLoteria && referencia == "" {
		return nil, rifaerr.ErrReferenciaObrigatoria
	}

	// Toda etapa falível termina antes da escrita de estado.
	res, err := provider.ProduceNumber(ctx, 1, rifa.QuantidadeBilhetes, referencia)
	if err != nil {
		return nil, err
	}

	dataSorteio := s.agora().UTC().Truncate(time.Second)
	commitment := hash.Commitment{
		CaixinhaID:     caixinhaID,
		RifaID:         rifaID,
		NumeroSorteado: res.Value,
		Metodo:         string(metodo),
		Referencia:     referencia,
		DataSorteio:    dataSorteio,
	}

	resultado := &model.SorteioResultado{
		NumeroSorteado:  res.Value,
		BilheteVencedor: rifa.Bilhete(res.Value), // nil se o número não foi vendido
		VerificacaoHash: commitment.Sum(),
		FonteEntropia:   res.Source,
		ReferenciaBruta: res.Raw,
		DataSorteio:     dataSorteio,
	}

	if err := s.repo.FinalizeDraw(ctx, caixinhaID, rifaID, metodo, referencia, resultado); err != nil {
		return nil, err
	}

	sorteiosTotal.WithLabelValues(string(metodo)).Inc()
	s.log.Info("sorteio realizado",
		zap.String("rifaId", rifaID),
		zap.String("metodo", string(metodo)),
		zap.Int("numeroSorteado", res.Value),
		zap.String("fonte", res.Source),
		zap.Bool("bilheteVendido", resultado.BilheteVencedor != nil),
	)

	s.publish(ctx, "sorteio_realizado", func(ctx context.Context) error {
		e := events.SorteioRealizado{
			CaixinhaID:      caixinhaID,
			RifaID:          rifaID,
			NumeroSorteado:  resultado.NumeroSorteado,
			Metodo:          string(metodo),
			Referencia:      referencia,
			FonteEntropia:   resultado.FonteEntropia,
			VerificacaoHash: resultado.VerificacaoHash,
			DataSorteio:     resultado.DataSorteio,
		}
		if b := resultado.BilheteVencedor; b != nil {
			n := b.Numero
			e.BilheteVencedorNumero = &n
			e.MembroVencedorID = b.MembroID
		}
		return s.publ.PublishSorteioRealizado(ctx, e)
	})

	return resultado, nil
}
