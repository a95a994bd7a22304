package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NistProvider mapeia deterministicamente o pulso mais recente do beacon de
// aleatoriedade do NIST em [min, max]. Mesma política de fallback do
// RANDOM_ORG, mas pulsos são recuperáveis pela URI publicada, então sorteios
// com Source external permanecem re-verificáveis.
type NistProvider struct {
	log     *zap.Logger
	http    *http.Client
	baseURL string
}

func NewNistProvider(log *zap.Logger, baseURL string, timeout time.Duration) *NistProvider {
	return &NistProvider{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// nistPulse é o envelope do beacon 2.0.
type nistPulse struct {
	Pulse struct {
		URI         string `json:"uri"`
		TimeStamp   string `json:"timeStamp"`
		OutputValue string `json:"outputValue"`
	} `json:"pulse"`
}

func (p *NistProvider) ProduceNumber(ctx context.Context, min, max int, _ string) (Result, error) {
	pulse, err := p.fetchPulse(ctx, p.baseURL+"/pulse/last")
	if err == nil {
		var v int
		v, err = valueFromHex(pulse.Pulse.OutputValue, min, max)
		if err == nil {
			return Result{Value: v, Source: SourceExternal, Raw: pulse.Pulse.URI}, nil
		}
	}
	p.log.Warn("beacon NIST indisponível, usando gerador local", zap.Error(err))
	fallbacksTotal.WithLabelValues("NIST").Inc()
	return localFallback(min, max)
}

// Reverify reobtém o pulso pela URI armazenada e rederiva o número.
func (p *NistProvider) Reverify(ctx context.Context, _, raw string, min, max int) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("pulso sem URI armazenada")
	}
	pulse, err := p.fetchPulse(ctx, raw)
	if err != nil {
		return 0, err
	}
	return valueFromHex(pulse.Pulse.OutputValue, min, max)
}

func (p *NistProvider) fetchPulse(ctx context.Context, url string) (*nistPulse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("beacon http %s", resp.Status)
	}
	var out nistPulse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Pulse.OutputValue == "" {
		return nil, fmt.Errorf("pulso sem outputValue")
	}
	return &out, nil
}

// valueFromHex projeta o outputValue hexadecimal do pulso em [min, max].
func valueFromHex(hexval string, min, max int) (int, error) {
	n, ok := new(big.Int).SetString(hexval, 16)
	if !ok {
		return 0, fmt.Errorf("outputValue não hexadecimal: %q", hexval)
	}
	return mapToRange(n, min, max), nil
}
