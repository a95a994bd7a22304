package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
)

// Postgres implementa a persistência de rifas. Bilhetes são linhas próprias
// com PRIMARY KEY (rifa_id, numero): o create-if-absent do banco é o
// primitivo CAS que garante no máximo um dono por número.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de rifas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere uma nova rifa com status ABERTA
func (p *Postgres) Create(ctx context.Context, r *model.Rifa) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rifas
			(id, caixinha_id, nome, descricao, valor_bilhete_centavos, quantidade_bilhetes,
			 data_inicio, data_fim, status, premio, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'ABERTA',$9,$10,$10)`,
		r.ID, r.CaixinhaID, r.Nome, r.Descricao, r.ValorBilhete, r.QuantidadeBilhetes,
		r.DataInicio, r.DataFim, r.Premio, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rifa: %w", err)
	}
	return nil
}

// Get carrega a rifa e seus bilhetes em ordem de compra
func (p *Postgres) Get(ctx context.Context, caixinhaID, rifaID string) (*model.Rifa, error) {
	r, err := p.scanRifa(ctx, p.db, caixinhaID, rifaID)
	if err != nil {
		return nil, err
	}
	if err := p.loadBilhetes(ctx, r); err != nil {
		return nil, err
	}
	if r.SorteioResultado != nil && r.SorteioResultado.BilheteVencedor == nil {
		r.SorteioResultado.BilheteVencedor = r.Bilhete(r.SorteioResultado.NumeroSorteado)
	}
	return r, nil
}

// ListByCaixinha retorna as rifas de uma caixinha, mais recentes primeiro
func (p *Postgres) ListByCaixinha(ctx context.Context, caixinhaID string) ([]*model.Rifa, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id FROM rifas WHERE caixinha_id=$1 ORDER BY created_at DESC`, caixinhaID)
	if err != nil {
		return nil, fmt.Errorf("list rifas: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*model.Rifa, 0, len(ids))
	for _, id := range ids {
		r, err := p.Get(ctx, caixinhaID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// UpdateMetadata altera campos editáveis enquanto a rifa está ABERTA.
// Nunca toca em bilhetes, status ou resultado.
func (p *Postgres) UpdateMetadata(ctx context.Context, caixinhaID, rifaID, nome, descricao, premio string, dataFim *time.Time, quando time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rifas SET nome=$3, descricao=$4, premio=$5, data_fim=$6, updated_at=$7
		WHERE caixinha_id=$1 AND id=$2 AND status='ABERTA'`,
		caixinhaID, rifaID, nome, descricao, premio, dataFim, quando,
	)
	if err != nil {
		return fmt.Errorf("update rifa: %w", err)
	}
	return p.requireOpenWrite(ctx, res, caixinhaID, rifaID)
}

// SellTicket aloca um número para um membro de forma atômica.
// A transação tranca a linha da rifa (vendas e finalização serializam nela)
// e o INSERT ... ON CONFLICT DO NOTHING é o backstop de unicidade do número
// mesmo contra escritores que não passem por este caminho.
func (p *Postgres) SellTicket(ctx context.Context, caixinhaID, rifaID string, numero int, membroID string, quando time.Time) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status model.StatusRifa
	var quantidade int
	var dataFim sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT status, quantidade_bilhetes, data_fim FROM rifas
		WHERE caixinha_id=$1 AND id=$2 FOR UPDATE`,
		caixinhaID, rifaID).Scan(&status, &quantidade, &dataFim)
	if err == sql.ErrNoRows {
		return rifaerr.ErrRifaNaoEncontrada
	} else if err != nil {
		return fmt.Errorf("lock rifa: %w", err)
	}

	if status != model.StatusAberta {
		return rifaerr.ErrRifaFechada
	}
	if dataFim.Valid && quando.After(dataFim.Time) {
		return rifaerr.ErrRifaFechada
	}
	if numero < 1 || numero > quantidade {
		return rifaerr.ErrNumeroInvalido
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO rifa_bilhetes (rifa_id, numero, membro_id, data_compra)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (rifa_id, numero) DO NOTHING`,
		rifaID, numero, membroID, quando,
	)
	if err != nil {
		return fmt.Errorf("insert bilhete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rifaerr.ErrBilheteJaVendido
	}

	if _, err = tx.ExecContext(ctx, `UPDATE rifas SET updated_at=$2 WHERE id=$1`, rifaID, quando); err != nil {
		return err
	}

	return tx.Commit()
}

// FinalizeDraw grava o resultado e o status FINALIZADA em uma única escrita
// condicional. RowsAffected zero significa que a transição ABERTA→FINALIZADA
// já aconteceu (ou a rifa foi cancelada); o resultado armazenado não é tocado.
func (p *Postgres) FinalizeDraw(ctx context.Context, caixinhaID, rifaID string, metodo model.MetodoSorteio, referencia string, resultado *model.SorteioResultado) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rifas SET
			status='FINALIZADA',
			sorteio_metodo=$3, sorteio_referencia=$4,
			numero_sorteado=$5, fonte_entropia=$6, referencia_bruta=$7,
			verificacao_hash=$8, data_sorteio=$9, updated_at=$9
		WHERE caixinha_id=$1 AND id=$2 AND status='ABERTA'`,
		caixinhaID, rifaID, metodo, referencia,
		resultado.NumeroSorteado, resultado.FonteEntropia, resultado.ReferenciaBruta,
		resultado.VerificacaoHash, resultado.DataSorteio,
	)
	if err != nil {
		return fmt.Errorf("finalize rifa: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		status, err := p.statusOf(ctx, caixinhaID, rifaID)
		if err != nil {
			return err
		}
		if status == model.StatusFinalizada {
			return rifaerr.ErrSorteioJaRealizado
		}
		return rifaerr.ErrRifaNaoAberta
	}
	return nil
}

// Cancel transita ABERTA→CANCELADA com o motivo informado
func (p *Postgres) Cancel(ctx context.Context, caixinhaID, rifaID, motivo string, quando time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rifas SET status='CANCELADA', motivo_cancelamento=$3, updated_at=$4
		WHERE caixinha_id=$1 AND id=$2 AND status='ABERTA'`,
		caixinhaID, rifaID, motivo, quando,
	)
	if err != nil {
		return fmt.Errorf("cancel rifa: %w", err)
	}
	return p.requireOpenWrite(ctx, res, caixinhaID, rifaID)
}

// SetComprovante grava o comprovante uma única vez (first writer wins) e
// retorna o documento armazenado, tornando a geração idempotente.
func (p *Postgres) SetComprovante(ctx context.Context, caixinhaID, rifaID, doc string) (string, error) {
	_, err := p.db.ExecContext(ctx, `
		UPDATE rifas SET comprovante=$3
		WHERE caixinha_id=$1 AND id=$2 AND status='FINALIZADA' AND comprovante IS NULL`,
		caixinhaID, rifaID, doc,
	)
	if err != nil {
		return "", fmt.Errorf("set comprovante: %w", err)
	}

	var status model.StatusRifa
	var stored sql.NullString
	err = p.db.QueryRowContext(ctx, `
		SELECT status, comprovante FROM rifas WHERE caixinha_id=$1 AND id=$2`,
		caixinhaID, rifaID).Scan(&status, &stored)
	if err == sql.ErrNoRows {
		return "", rifaerr.ErrRifaNaoEncontrada
	} else if err != nil {
		return "", err
	}
	if status != model.StatusFinalizada {
		return "", rifaerr.ErrRifaNaoFinalizada
	}
	if !stored.Valid {
		return "", fmt.Errorf("comprovante ausente após escrita")
	}
	return stored.String, nil
}

// Delete remove uma rifa não finalizada. Rifas FINALIZADAS são preservadas
// para auditoria.
func (p *Postgres) Delete(ctx context.Context, caixinhaID, rifaID string) error {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM rifas WHERE caixinha_id=$1 AND id=$2 AND status <> 'FINALIZADA'`,
		caixinhaID, rifaID,
	)
	if err != nil {
		return fmt.Errorf("delete rifa: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		status, err := p.statusOf(ctx, caixinhaID, rifaID)
		if err != nil {
			return err
		}
		if status == model.StatusFinalizada {
			return rifaerr.ErrRifaFinalizada
		}
		return rifaerr.ErrRifaNaoEncontrada
	}
	return nil
}

// requireOpenWrite traduz RowsAffected zero de escritas condicionadas a
// status='ABERTA' no erro de estado correto.
func (p *Postgres) requireOpenWrite(ctx context.Context, res sql.Result, caixinhaID, rifaID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := p.statusOf(ctx, caixinhaID, rifaID); err != nil {
		return err
	}
	return rifaerr.ErrRifaNaoAberta
}

func (p *Postgres) statusOf(ctx context.Context, caixinhaID, rifaID string) (model.StatusRifa, error) {
	var status model.StatusRifa
	err := p.db.QueryRowContext(ctx, `
		SELECT status FROM rifas WHERE caixinha_id=$1 AND id=$2`,
		caixinhaID, rifaID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", rifaerr.ErrRifaNaoEncontrada
	} else if err != nil {
		return "", err
	}
	return status, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) scanRifa(ctx context.Context, q querier, caixinhaID, rifaID string) (*model.Rifa, error) {
	var (
		r              model.Rifa
		dataFim        sql.NullTime
		metodo         sql.NullString
		referencia     sql.NullString
		numeroSorteado sql.NullInt64
		fonte          sql.NullString
		refBruta       sql.NullString
		hashVal        sql.NullString
		dataSorteio    sql.NullTime
		comprovante    sql.NullString
		motivo         sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, caixinha_id, nome, descricao, valor_bilhete_centavos, quantidade_bilhetes,
		       data_inicio, data_fim, status, premio,
		       sorteio_metodo, sorteio_referencia, numero_sorteado, fonte_entropia,
		       referencia_bruta, verificacao_hash, data_sorteio, comprovante,
		       motivo_cancelamento, created_at, updated_at
		FROM rifas WHERE caixinha_id=$1 AND id=$2`,
		caixinhaID, rifaID).Scan(
		&r.ID, &r.CaixinhaID, &r.Nome, &r.Descricao, &r.ValorBilhete, &r.QuantidadeBilhetes,
		&r.DataInicio, &dataFim, &r.Status, &r.Premio,
		&metodo, &referencia, &numeroSorteado, &fonte,
		&refBruta, &hashVal, &dataSorteio, &comprovante,
		&motivo, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, rifaerr.ErrRifaNaoEncontrada
	} else if err != nil {
		return nil, fmt.Errorf("scan rifa: %w", err)
	}

	if dataFim.Valid {
		t := dataFim.Time
		r.DataFim = &t
	}
	r.SorteioMetodo = model.MetodoSorteio(metodo.String)
	r.SorteioReferencia = referencia.String
	r.MotivoCancelamento = motivo.String

	if r.Status == model.StatusFinalizada && numeroSorteado.Valid {
		res := &model.SorteioResultado{
			NumeroSorteado:  int(numeroSorteado.Int64),
			VerificacaoHash: hashVal.String,
			FonteEntropia:   fonte.String,
			ReferenciaBruta: refBruta.String,
			DataSorteio:     dataSorteio.Time,
		}
		if comprovante.Valid {
			c := comprovante.String
			res.Comprovante = &c
		}
		r.SorteioResultado = res
	}
	return &r, nil
}

func (p *Postgres) loadBilhetes(ctx context.Context, r *model.Rifa) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT numero, membro_id, data_compra FROM rifa_bilhetes
		WHERE rifa_id=$1 ORDER BY data_compra, numero`, r.ID)
	if err != nil {
		return fmt.Errorf("load bilhetes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bilhete
		if err := rows.Scan(&b.Numero, &b.MembroID, &b.DataCompra); err != nil {
			return err
		}
		r.BilhetesVendidos = append(r.BilhetesVendidos, b)
	}
	return rows.Err()
}
