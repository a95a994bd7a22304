package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

// comprovanteDoc é o documento de exibição gerado após o sorteio. Embute os
// mesmos campos comprometidos pelo hash; não participa da corretude do
// sorteio e pode ser regenerado sem efeito (first writer wins no repo).
type comprovanteDoc struct {
	Versao          string    `json:"versao"`
	CaixinhaID      string    `json:"caixinhaId"`
	RifaID          string    `json:"rifaId"`
	Nome            string    `json:"nome"`
	Premio          string    `json:"premio"`
	NumeroSorteado  int       `json:"numeroSorteado"`
	MembroVencedor  string    `json:"membroVencedor,omitempty"`
	NumeroVencedor  *int      `json:"numeroVencedor"`
	Metodo          string    `json:"metodo"`
	Referencia      string    `json:"referencia"`
	FonteEntropia   string    `json:"fonteEntropia"`
	VerificacaoHash string    `json:"verificacaoHash"`
	DataSorteio     time.Time `json:"dataSorteio"`
	GeradoEm        time.Time `json:"geradoEm"`
}

// BuildComprovante monta o JSON do comprovante de uma rifa finalizada.
func BuildComprovante(rifa *model.Rifa, geradoEm time.Time) (string, error) {
	if rifa.Status != model.StatusFinalizada || rifa.SorteioResultado == nil {
		return "", rifaerr.ErrRifaNaoFinalizada
	}
	resultado := rifa.SorteioResultado

	doc := comprovanteDoc{
		Versao:          "comprovante-v1",
		CaixinhaID:      rifa.CaixinhaID,
		RifaID:          rifa.ID,
		Nome:            rifa.Nome,
		Premio:          rifa.Premio,
		NumeroSorteado:  resultado.NumeroSorteado,
		Metodo:          string(rifa.SorteioMetodo),
		Referencia:      rifa.SorteioReferencia,
		FonteEntropia:   resultado.FonteEntropia,
		VerificacaoHash: resultado.VerificacaoHash,
		DataSorteio:     resultado.DataSorteio,
		GeradoEm:        geradoEm,
	}
	if b := resultado.BilheteVencedor; b != nil {
		n := b.Numero
		doc.NumeroVencedor = &n
		doc.MembroVencedor = b.MembroID
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal comprovante: %w", err)
	}
	return string(out), nil
}

// GerarComprovante gera (ou retorna, se já existir) o comprovante do
// sorteio. Idempotente e repetível; exige rifa FINALIZADA.
func (s *Service) GerarComprovante(ctx context.Context, caixinhaID, rifaID string) (string, error) {
	rifa, err := s.repo.Get(ctx, caixinhaID, rifaID)
	if err != nil {
		return "", err
	}
	if rifa.SorteioResultado != nil && rifa.SorteioResultado.Comprovante != nil {
		return *rifa.SorteioResultado.Comprovante, nil
	}

	doc, err := BuildComprovante(rifa, s.agora().UTC())
	if err != nil {
		return "", err
	}
	return s.repo.SetComprovante(ctx, caixinhaID, rifaID, doc)
}
