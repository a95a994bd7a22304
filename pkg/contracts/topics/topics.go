package topics

const (
	// Rifas
	RifaCriada       = "rifa_criada"
	BilheteVendido   = "bilhete_vendido"
	SorteioRealizado = "sorteio_realizado"

	// DLQs
	SorteioRealizadoDLQ = "sorteio_realizado_dlq"
)
