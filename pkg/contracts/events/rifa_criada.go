package events

type RifaCriada struct {
	CaixinhaID           string `json:"caixinha_id"`
	RifaID               string `json:"rifa_id"`
	Nome                 string `json:"nome"`
	QuantidadeBilhetes   int    `json:"quantidade_bilhetes"`
	ValorBilheteCentavos int64  `json:"valor_bilhete_centavos"`
	TsUnixMs             int64  `json:"ts_unix_ms"`
}
