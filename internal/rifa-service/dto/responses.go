package dto

import "encoding/json"

type ErroResponse struct {
	Erro string `json:"erro"`
}

type VendaResponse struct {
	Numero   int    `json:"numero"`
	MembroID string `json:"membroId"`
	Status   string `json:"status"` // VENDIDO
}

type ComprovanteResponse struct {
	Comprovante json.RawMessage `json:"comprovante"`
}
