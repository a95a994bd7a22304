// Package service é o núcleo de rifas da caixinha: ciclo de vida do
// agregado, venda de bilhetes, orquestração do sorteio, verificação de
// integridade e geração de comprovante. A camada HTTP só traduz transporte.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/entropy"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
	"github.com/radieske/caixinha-rifa-service/pkg/contracts/events"
)

// Repo é o colaborador de persistência. SellTicket e FinalizeDraw precisam
// ser escritas condicionais atômicas (ver repo.Postgres); um append
// incondicional é um bug de corretude, não uma implementação aceitável.
type Repo interface {
	Create(ctx context.Context, r *model.Rifa) error
	Get(ctx context.Context, caixinhaID, rifaID string) (*model.Rifa, error)
	ListByCaixinha(ctx context.Context, caixinhaID string) ([]*model.Rifa, error)
	UpdateMetadata(ctx context.Context, caixinhaID, rifaID, nome, descricao, premio string, dataFim *time.Time, quando time.Time) error
	SellTicket(ctx context.Context, caixinhaID, rifaID string, numero int, membroID string, quando time.Time) error
	FinalizeDraw(ctx context.Context, caixinhaID, rifaID string, metodo model.MetodoSorteio, referencia string, resultado *model.SorteioResultado) error
	Cancel(ctx context.Context, caixinhaID, rifaID, motivo string, quando time.Time) error
	SetComprovante(ctx context.Context, caixinhaID, rifaID, doc string) (string, error)
	Delete(ctx context.Context, caixinhaID, rifaID string) error
}

// Publisher emite os eventos de domínio no broker.
type Publisher interface {
	PublishRifaCriada(ctx context.Context, e events.RifaCriada) error
	PublishBilheteVendido(ctx context.Context, e events.BilheteVendido) error
	PublishSorteioRealizado(ctx context.Context, e events.SorteioRealizado) error
}

type Service struct {
	log     *zap.Logger
	repo    Repo
	entropy *entropy.Registry
	publ    Publisher
	agora   func() time.Time // hook de relógio para testes
}

func New(log *zap.Logger, repo Repo, registry *entropy.Registry, publ Publisher) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		entropy: registry,
		publ:    publ,
		agora:   time.Now,
	}
}

// CriarRifaInput são os campos aceitos na criação.
type CriarRifaInput struct {
	CaixinhaID         string
	Nome               string
	Descricao          string
	ValorBilhete       int64 // centavos
	QuantidadeBilhetes int
	DataInicio         time.Time // zero = agora
	DataFim            *time.Time
	Premio             string
}

// CriarRifa valida e cria uma rifa ABERTA para a caixinha.
func (s *Service) CriarRifa(ctx context.Context, in CriarRifaInput) (*model.Rifa, error) {
	if in.CaixinhaID == "" {
		return nil, fmt.Errorf("%w: caixinhaId obrigatório", rifaerr.ErrRifaInvalida)
	}
	if in.Nome == "" {
		return nil, fmt.Errorf("%w: nome obrigatório", rifaerr.ErrRifaInvalida)
	}
	if in.QuantidadeBilhetes < 1 {
		return nil, fmt.Errorf("%w: quantidadeBilhetes deve ser >= 1", rifaerr.ErrRifaInvalida)
	}
	if in.ValorBilhete <= 0 {
		return nil, fmt.Errorf("%w: valorBilhete deve ser > 0", rifaerr.ErrRifaInvalida)
	}

	agora := s.agora().UTC()
	inicio := in.DataInicio
	if inicio.IsZero() {
		inicio = agora
	}
	if in.DataFim != nil && !in.DataFim.After(inicio) {
		return nil, fmt.Errorf("%w: dataFim deve ser posterior a dataInicio", rifaerr.ErrRifaInvalida)
	}

	r := &model.Rifa{
		ID:                 uuid.NewString(),
		CaixinhaID:         in.CaixinhaID,
		Nome:               in.Nome,
		Descricao:          in.Descricao,
		ValorBilhete:       in.ValorBilhete,
		QuantidadeBilhetes: in.QuantidadeBilhetes,
		DataInicio:         inicio,
		DataFim:            in.DataFim,
		Status:             model.StatusAberta,
		Premio:             in.Premio,
		CreatedAt:          agora,
		UpdatedAt:          agora,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, "rifa_criada", func(ctx context.Context) error {
		return s.publ.PublishRifaCriada(ctx, events.RifaCriada{
			CaixinhaID:           r.CaixinhaID,
			RifaID:               r.ID,
			Nome:                 r.Nome,
			QuantidadeBilhetes:   r.QuantidadeBilhetes,
			ValorBilheteCentavos: r.ValorBilhete,
		})
	})
	return r, nil
}

// Listar retorna as rifas da caixinha.
func (s *Service) Listar(ctx context.Context, caixinhaID string) ([]*model.Rifa, error) {
	return s.repo.ListByCaixinha(ctx, caixinhaID)
}

// Buscar retorna uma rifa pelo id.
func (s *Service) Buscar(ctx context.Context, caixinhaID, rifaID string) (*model.Rifa, error) {
	return s.repo.Get(ctx, caixinhaID, rifaID)
}

// AtualizarRifaInput são os campos editáveis enquanto a rifa está ABERTA.
type AtualizarRifaInput struct {
	Nome      string
	Descricao string
	Premio    string
	DataFim   *time.Time
}

// AtualizarRifa altera metadados de uma rifa ABERTA. Bilhetes, status e
// resultado nunca passam por aqui.
func (s *Service) AtualizarRifa(ctx context.Context, caixinhaID, rifaID string, in AtualizarRifaInput) (*model.Rifa, error) {
	if in.Nome == "" {
		return nil, fmt.Errorf("%w: nome obrigatório", rifaerr.ErrRifaInvalida)
	}
	if err := s.repo.UpdateMetadata(ctx, caixinhaID, rifaID, in.Nome, in.Descricao, in.Premio, in.DataFim, s.agora().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, caixinhaID, rifaID)
}

// CancelarRifa transita ABERTA→CANCELADA. O motivo é obrigatório na
// borda: o núcleo não inventa um placeholder.
func (s *Service) CancelarRifa(ctx context.Context, caixinhaID, rifaID, motivo string) error {
	if motivo == "" {
		return rifaerr.ErrMotivoObrigatorio
	}
	return s.repo.Cancel(ctx, caixinhaID, rifaID, motivo, s.agora().UTC())
}

// ExcluirRifa remove uma rifa não finalizada. Rifas FINALIZADAS são
// preservadas para auditoria e a exclusão é rejeitada.
func (s *Service) ExcluirRifa(ctx context.Context, caixinhaID, rifaID string) error {
	return s.repo.Delete(ctx, caixinhaID, rifaID)
}

// VenderBilhete aloca o numero para o membro. A resolução de corridas pelo
// mesmo numero acontece no repositório: exatamente um comprador vence,
// os demais recebem ErrBilheteJaVendido.
func (s *Service) VenderBilhete(ctx context.Context, caixinhaID, rifaID string, numero int, membroID string) error {
	if membroID == "" {
		return fmt.Errorf("%w: membroId obrigatório", rifaerr.ErrRifaInvalida)
	}
	if numero < 1 {
		return rifaerr.ErrNumeroInvalido
	}

	err := s.repo.SellTicket(ctx, caixinhaID, rifaID, numero, membroID, s.agora().UTC())
	if err != nil {
		if rifaerr.KindOf(err) == rifaerr.KindConflict {
			vendasConflitoTotal.Inc()
		}
		return err
	}

	bilhetesVendidosTotal.Inc()
	s.publish(ctx, "bilhete_vendido", func(ctx context.Context) error {
		return s.publ.PublishBilheteVendido(ctx, events.BilheteVendido{
			CaixinhaID: caixinhaID,
			RifaID:     rifaID,
			Numero:     numero,
			MembroID:   membroID,
		})
	})
	return nil
}

// publish emite um evento best-effort; falha de broker não desfaz a escrita.
func (s *Service) publish(ctx context.Context, nome string, fn func(context.Context) error) {
	if s.publ == nil {
		return
	}
	if err := fn(ctx); err != nil {
		s.log.Warn("publicação de evento falhou", zap.String("evento", nome), zap.Error(err))
	}
}
