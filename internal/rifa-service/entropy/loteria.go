package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

// LoteriaProvider deriva o número do resultado público de um concurso da
// loteria identificado pela referência. Sem fallback: se o concurso nomeado
// não está disponível, o sorteio falha com ErrFonteExternaIndisponivel,
// porque a auditabilidade depende daquele sorteio público específico.
type LoteriaProvider struct {
	log     *zap.Logger
	http    *http.Client
	baseURL string
	cache   Cache // opcional; nil desativa o cache
}

func NewLoteriaProvider(log *zap.Logger, baseURL string, timeout time.Duration, cache Cache) *LoteriaProvider {
	return &LoteriaProvider{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   cache,
	}
}

// concursoLoteria é a resposta da API pública de loterias.
type concursoLoteria struct {
	Concurso int      `json:"numero"`
	Dezenas  []string `json:"listaDezenas"`
}

func (p *LoteriaProvider) ProduceNumber(ctx context.Context, min, max int, referencia string) (Result, error) {
	body, err := p.fetch(ctx, referencia)
	if err != nil {
		return Result{}, fmt.Errorf("%w: concurso %s: %v", rifaerr.ErrFonteExternaIndisponivel, referencia, err)
	}

	var c concursoLoteria
	if err := json.Unmarshal(body, &c); err != nil {
		return Result{}, fmt.Errorf("%w: resposta inválida do concurso %s: %v", rifaerr.ErrFonteExternaIndisponivel, referencia, err)
	}
	if len(c.Dezenas) == 0 {
		return Result{}, fmt.Errorf("%w: concurso %s sem dezenas publicadas", rifaerr.ErrFonteExternaIndisponivel, referencia)
	}

	v, err := deriveFromDezenas(c.Dezenas, min, max)
	if err != nil {
		return Result{}, fmt.Errorf("%w: concurso %s: %v", rifaerr.ErrFonteExternaIndisponivel, referencia, err)
	}

	return Result{
		Value:  v,
		Source: SourceExternal,
		Raw:    fmt.Sprintf("concurso=%d;dezenas=%s", c.Concurso, strings.Join(c.Dezenas, "-")),
	}, nil
}

// Reverify reobtém o concurso público e rederiva o número para comparação.
func (p *LoteriaProvider) Reverify(ctx context.Context, referencia, _ string, min, max int) (int, error) {
	res, err := p.ProduceNumber(ctx, min, max, referencia)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// fetch busca o corpo do concurso, passando pelo cache quando configurado.
func (p *LoteriaProvider) fetch(ctx context.Context, referencia string) ([]byte, error) {
	key := "loteria:" + referencia
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, key); ok {
			return []byte(cached), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+referencia, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loteria http %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(ctx, key, string(body))
	}
	return body, nil
}

// deriveFromDezenas concatena as dezenas na ordem publicada e projeta o
// inteiro resultante em [min, max]. Determinístico para o mesmo concurso.
func deriveFromDezenas(dezenas []string, min, max int) (int, error) {
	var sb strings.Builder
	for _, d := range dezenas {
		sb.WriteString(strings.TrimSpace(d))
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return 0, fmt.Errorf("dezenas não numéricas: %v", dezenas)
	}
	return mapToRange(n, min, max), nil
}
