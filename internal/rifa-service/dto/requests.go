package dto

import "time"

type CriarRifaRequest struct {
	Nome                 string     `json:"nome"`
	Descricao            string     `json:"descricao"`
	ValorBilheteCentavos int64      `json:"valorBilheteCentavos"`
	QuantidadeBilhetes   int        `json:"quantidadeBilhetes"`
	DataInicio           *time.Time `json:"dataInicio"`
	DataFim              *time.Time `json:"dataFim"`
	Premio               string     `json:"premio"`
}

type AtualizarRifaRequest struct {
	Nome      string     `json:"nome"`
	Descricao string     `json:"descricao"`
	Premio    string     `json:"premio"`
	DataFim   *time.Time `json:"dataFim"`
}

type CancelarRifaRequest struct {
	Motivo string `json:"motivo"`
}

type VenderBilheteRequest struct {
	Numero   int    `json:"numero"`
	MembroID string `json:"membroId"`
}

type SorteioRequest struct {
	Metodo     string `json:"metodo"` // "LOTERIA" | "RANDOM_ORG" | "NIST"
	Referencia string `json:"referencia"`
}
