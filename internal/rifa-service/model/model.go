package model

import "time"

// StatusRifa é o estado do ciclo de vida de uma rifa.
// FINALIZADA e CANCELADA são terminais: nenhum campo muda depois delas.
type StatusRifa string

const (
	StatusAberta     StatusRifa = "ABERTA"
	StatusFinalizada StatusRifa = "FINALIZADA"
	StatusCancelada  StatusRifa = "CANCELADA"
)

// MetodoSorteio identifica a fonte de entropia usada no sorteio.
type MetodoSorteio string

const (
	MetodoLoteria   MetodoSorteio = "LOTERIA"
	MetodoRandomOrg MetodoSorteio = "RANDOM_ORG"
	MetodoNist      MetodoSorteio = "NIST"
)

// Bilhete é uma entrada numerada comprada por um membro da caixinha.
// O bilhete pertence à rifa; MembroID é apenas uma referência.
type Bilhete struct {
	Numero     int       `json:"numero"`
	MembroID   string    `json:"membroId"`
	DataCompra time.Time `json:"dataCompra"`
}

// SorteioResultado é o resultado embutido de um sorteio finalizado.
type SorteioResultado struct {
	NumeroSorteado int `json:"numeroSorteado"`
	// BilheteVencedor é nulo quando o número sorteado não foi vendido
	// (resultado válido; o prêmio acumula conforme política da caixinha)
	BilheteVencedor *Bilhete  `json:"bilheteVencedor"`
	VerificacaoHash string    `json:"verificacaoHash"`
	FonteEntropia   string    `json:"fonteEntropia"` // "external" | "local-fallback"
	ReferenciaBruta string    `json:"referenciaBruta"`
	DataSorteio     time.Time `json:"dataSorteio"`
	Comprovante     *string   `json:"comprovante"`
}

// Rifa é o agregado persistido. Todo numero em BilhetesVendidos é único e
// está em [1, QuantidadeBilhetes]; SorteioResultado é não-nulo se e somente
// se Status = FINALIZADA.
type Rifa struct {
	ID                 string            `json:"id"`
	CaixinhaID         string            `json:"caixinhaId"`
	Nome               string            `json:"nome"`
	Descricao          string            `json:"descricao"`
	ValorBilhete       int64             `json:"valorBilheteCentavos"`
	QuantidadeBilhetes int               `json:"quantidadeBilhetes"`
	BilhetesVendidos   []Bilhete         `json:"bilhetesVendidos"`
	DataInicio         time.Time         `json:"dataInicio"`
	DataFim            *time.Time        `json:"dataFim"`
	Status             StatusRifa        `json:"status"`
	Premio             string            `json:"premio"`
	SorteioMetodo      MetodoSorteio     `json:"sorteioMetodo,omitempty"`
	SorteioReferencia  string            `json:"sorteioReferencia,omitempty"`
	SorteioResultado   *SorteioResultado `json:"sorteioResultado"`
	MotivoCancelamento string            `json:"motivoCancelamento,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// Bilhete retorna o bilhete vendido com o numero dado, ou nil.
func (r *Rifa) Bilhete(numero int) *Bilhete {
	for i := range r.BilhetesVendidos {
		if r.BilhetesVendidos[i].Numero == numero {
			return &r.BilhetesVendidos[i]
		}
	}
	return nil
}

// VendasEncerradas informa se a janela de venda já passou do corte DataFim.
func (r *Rifa) VendasEncerradas(agora time.Time) bool {
	return r.DataFim != nil && agora.After(*r.DataFim)
}
