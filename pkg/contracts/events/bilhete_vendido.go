package events

type BilheteVendido struct {
	CaixinhaID string `json:"caixinha_id"`
	RifaID     string `json:"rifa_id"`
	Numero     int    `json:"numero"`
	MembroID   string `json:"membro_id"`
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
