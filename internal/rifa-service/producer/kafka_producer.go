package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/caixinha-rifa-service/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de domínio da rifa, um writer por tópico.
type KafkaPublisher struct {
	Criadas  *kafka.Writer
	Vendas   *kafka.Writer
	Sorteios *kafka.Writer
}

func NewKafkaPublisher(criadas, vendas, sorteios *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Criadas: criadas, Vendas: vendas, Sorteios: sorteios}
}

func (p *KafkaPublisher) PublishRifaCriada(ctx context.Context, e events.RifaCriada) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Criadas.WriteMessages(ctx, kafka.Message{Key: []byte(e.RifaID), Value: b})
}

func (p *KafkaPublisher) PublishBilheteVendido(ctx context.Context, e events.BilheteVendido) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Vendas.WriteMessages(ctx, kafka.Message{Key: []byte(e.RifaID), Value: b})
}

func (p *KafkaPublisher) PublishSorteioRealizado(ctx context.Context, e events.SorteioRealizado) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Sorteios.WriteMessages(ctx, kafka.Message{Key: []byte(e.RifaID), Value: b})
}
