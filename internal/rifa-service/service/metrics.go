package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bilhetesVendidosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_bilhetes_vendidos_total",
		Help: "Bilhetes vendidos com sucesso",
	})

	vendasConflitoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_vendas_conflito_total",
		Help: "Vendas rejeitadas por corrida no mesmo numero ou sorteio concorrente",
	})

	sorteiosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_sorteios_total",
		Help: "Sorteios finalizados por método",
	}, []string{"metodo"})

	verificacoesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_verificacoes_total",
		Help: "Verificações de integridade executadas",
	}, []string{"integridade"})
)
