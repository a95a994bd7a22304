package entropy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RandomOrgProvider consulta o serviço de aleatoriedade verdadeira do
// random.org. Em falha de rede, rate-limit ou resposta malformada degrada
// para o gerador local, marcando Source como local-fallback para que a
// verificação reporte o sorteio como não-verificável em vez de corrompido.
type RandomOrgProvider struct {
	log     *zap.Logger
	http    *http.Client
	baseURL string
}

func NewRandomOrgProvider(log *zap.Logger, baseURL string, timeout time.Duration) *RandomOrgProvider {
	return &RandomOrgProvider{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (p *RandomOrgProvider) ProduceNumber(ctx context.Context, min, max int, _ string) (Result, error) {
	v, err := p.fetch(ctx, min, max)
	if err != nil {
		p.log.Warn("random.org indisponível, usando gerador local", zap.Error(err))
		fallbacksTotal.WithLabelValues("RANDOM_ORG").Inc()
		return localFallback(min, max)
	}
	return Result{
		Value:  v,
		Source: SourceExternal,
		Raw:    fmt.Sprintf("randomorg;min=%d;max=%d", min, max),
	}, nil
}

func (p *RandomOrgProvider) fetch(ctx context.Context, min, max int) (int, error) {
	url := fmt.Sprintf("%s?num=1&min=%d&max=%d&col=1&base=10&format=plain&rnd=new", p.baseURL, min, max)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("random.org http %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("resposta não numérica: %q", string(body))
	}
	if v < min || v > max {
		return 0, fmt.Errorf("valor %d fora de [%d,%d]", v, min, max)
	}
	return v, nil
}
