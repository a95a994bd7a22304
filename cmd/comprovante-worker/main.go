package main

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/repo"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/service"
	"github.com/radieske/caixinha-rifa-service/internal/shared/config"
	"github.com/radieske/caixinha-rifa-service/internal/shared/db"
	"github.com/radieske/caixinha-rifa-service/internal/shared/kafka"
	"github.com/radieske/caixinha-rifa-service/internal/shared/logger"
	"github.com/radieske/caixinha-rifa-service/internal/shared/metrics"
	ev "github.com/radieske/caixinha-rifa-service/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com Postgres para materializar o comprovante na rifa
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	repository := repo.NewPostgres(pg)

	// Kafka consumer: consome sorteio_realizado para gerar comprovantes
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicSorteioRealizado, "comprovante-worker")
	defer reader.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicSorteioRealizadoDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSorteioRealizadoDLQ)
		defer dlqWriter.Close()
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("comprovante-worker started", zap.String("consume", cfg.TopicSorteioRealizado))

	ctx := context.Background()

	// Loop principal: consome sorteios realizados e gera o comprovante.
	// A escrita é first-writer-wins no banco, então reprocessar é inócuo.
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var sorteio ev.SorteioRealizado
		if jerr := json.Unmarshal(value, &sorteio); jerr != nil {
			log.Error("unmarshal sorteio_realizado", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, repository, dlqWriter, &sorteio); err != nil {
			log.Error("gerar comprovante", zap.String("rifaId", sorteio.RifaID), zap.Error(err))
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne gera o comprovante de um sorteio com retry simples; após
// esgotar as tentativas a mensagem vai para a DLQ.
func processOne(ctx context.Context, log *zap.Logger, repository *repo.Postgres, dlqWriter *kafka.Writer, sorteio *ev.SorteioRealizado) error {
	err := gerar(ctx, repository, sorteio)
	if err == nil {
		return nil
	}

	const retries = 3
	for i := 0; i < retries; i++ {
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
		if err = gerar(ctx, repository, sorteio); err == nil {
			return nil
		}
	}

	if dlqWriter != nil {
		log.Warn("enviando sorteio para DLQ", zap.String("rifaId", sorteio.RifaID))
		_ = kafka.WriteJSON(ctx, dlqWriter, sorteio.RifaID, mustJSON(sorteio))
	}
	return err
}

func gerar(ctx context.Context, repository *repo.Postgres, sorteio *ev.SorteioRealizado) error {
	rifa, err := repository.Get(ctx, sorteio.CaixinhaID, sorteio.RifaID)
	if err != nil {
		return err
	}
	if rifa.SorteioResultado != nil && rifa.SorteioResultado.Comprovante != nil {
		return nil // já gerado
	}
	doc, err := service.BuildComprovante(rifa, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = repository.SetComprovante(ctx, sorteio.CaixinhaID, sorteio.RifaID, doc)
	return err
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
