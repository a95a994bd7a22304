package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/entropy"
	rhttp "github.com/radieske/caixinha-rifa-service/internal/rifa-service/http"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	kpub "github.com/radieske/caixinha-rifa-service/internal/rifa-service/producer"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/repo"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/service"
	"github.com/radieske/caixinha-rifa-service/internal/shared/cache"
	"github.com/radieske/caixinha-rifa-service/internal/shared/config"
	"github.com/radieske/caixinha-rifa-service/internal/shared/db"
	"github.com/radieske/caixinha-rifa-service/internal/shared/kafka"
	"github.com/radieske/caixinha-rifa-service/internal/shared/logger"
	"github.com/radieske/caixinha-rifa-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de concursos de loteria já publicados)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers, um por tópico de domínio
	criadas := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRifaCriada)
	defer criadas.Close()
	vendas := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBilheteVendido)
	defer vendas.Close()
	sorteios := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSorteioRealizado)
	defer sorteios.Close()

	// deps
	repository := repo.NewPostgres(pg)
	publ := kpub.NewKafkaPublisher(criadas, vendas, sorteios)

	loteriaCache := entropy.NewRedisCache(rdb, 30*24*time.Hour)
	registry := entropy.NewRegistry(map[model.MetodoSorteio]entropy.Provider{
		model.MetodoLoteria:   entropy.NewLoteriaProvider(log, cfg.LoteriaAPIURL, cfg.EntropyTimeout, loteriaCache),
		model.MetodoRandomOrg: entropy.NewRandomOrgProvider(log, cfg.RandomOrgURL, cfg.EntropyTimeout),
		model.MetodoNist:      entropy.NewNistProvider(log, cfg.NistBeaconURL, cfg.EntropyTimeout),
	})

	svc := service.New(log, repository, registry, publ)

	// HTTP público
	api := rhttp.NewServer(log, svc)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("rifa-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
