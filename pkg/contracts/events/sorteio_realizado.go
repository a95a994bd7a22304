package events

import "time"

type SorteioRealizado struct {
	CaixinhaID     string `json:"caixinha_id"`
	RifaID         string `json:"rifa_id"`
	NumeroSorteado int    `json:"numero_sorteado"`
	// BilheteVencedorNumero é nulo quando o número sorteado não foi vendido
	BilheteVencedorNumero *int      `json:"bilhete_vencedor_numero"`
	MembroVencedorID      string    `json:"membro_vencedor_id,omitempty"`
	Metodo                string    `json:"metodo"`
	Referencia            string    `json:"referencia"`
	FonteEntropia         string    `json:"fonte_entropia"`
	VerificacaoHash       string    `json:"verificacao_hash"`
	DataSorteio           time.Time `json:"data_sorteio"`
	TsUnixMs              int64     `json:"ts_unix_ms"`
}
