// Package hash calcula o hash de verificação do sorteio sobre uma forma
// canônica explícita e versionada. A verificação recomputa a mesma forma
// byte a byte, então qualquer mudança de layout exige uma nova versão.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Version prefixa a forma canônica; incrementar ao mudar o layout.
const Version = "rifa-sorteio-v1"

// Commitment reúne os campos comprometidos pelo hash do sorteio.
type Commitment struct {
	CaixinhaID     string
	RifaID         string
	NumeroSorteado int
	Metodo         string
	Referencia     string
	DataSorteio    time.Time
}

// Canonical serializa o commitment na forma canônica v1: ordem fixa de
// campos, separador "|", data em RFC3339 UTC truncada a segundos.
func (c Commitment) Canonical() string {
	return fmt.Sprintf("%s|caixinha=%s|rifa=%s|numero=%d|metodo=%s|referencia=%s|data=%s",
		Version,
		c.CaixinhaID,
		c.RifaID,
		c.NumeroSorteado,
		c.Metodo,
		c.Referencia,
		c.DataSorteio.UTC().Truncate(time.Second).Format(time.RFC3339),
	)
}

// Sum retorna o SHA-256 da forma canônica em hex minúsculo.
func (c Commitment) Sum() string {
	sum := sha256.Sum256([]byte(c.Canonical()))
	return hex.EncodeToString(sum[:])
}
