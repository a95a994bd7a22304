// Package rifaerr define os erros tipados expostos pelo núcleo de rifas.
// A camada HTTP mapeia Kind para status code; o núcleo nunca conhece HTTP.
package rifaerr

import "errors"

// Kind classifica o erro para fins de mapeamento e retry.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: entrada corrigível pelo cliente
	KindValidation
	// KindConflict: colisão de escrita concorrente; retry após recarregar estado
	KindConflict
	// KindState: pré-condição de ciclo de vida violada; retry não resolve
	KindState
	// KindExternal: dependência externa indisponível; retry mais tarde
	KindExternal
	// KindNotFound: rifa inexistente para a caixinha informada
	KindNotFound
)

// Error é um erro sentinela com classificação.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind retorna a classe do erro.
func (e *Error) Kind() Kind { return e.kind }

// New cria um erro sentinela classificado.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// KindOf extrai a classe de um erro, atravessando wraps com %w.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.kind
	}
	return KindUnknown
}

var (
	// Validação
	ErrNumeroInvalido        = New(KindValidation, "numero de bilhete fora do intervalo da rifa")
	ErrMetodoInvalido        = New(KindValidation, "metodo de sorteio desconhecido")
	ErrReferenciaObrigatoria = New(KindValidation, "referencia do concurso é obrigatória para o metodo LOTERIA")
	ErrMotivoObrigatorio     = New(KindValidation, "motivo do cancelamento é obrigatório")
	ErrRifaInvalida          = New(KindValidation, "dados da rifa inválidos")

	// Conflito (escritas concorrentes)
	ErrBilheteJaVendido   = New(KindConflict, "bilhete já vendido para outro membro")
	ErrSorteioJaRealizado = New(KindConflict, "sorteio já realizado para esta rifa")

	// Estado
	ErrRifaFechada       = New(KindState, "rifa não está aberta para venda de bilhetes")
	ErrRifaNaoAberta     = New(KindState, "rifa não está no estado ABERTA")
	ErrSemBilhetes       = New(KindState, "rifa não possui bilhetes vendidos")
	ErrRifaFinalizada    = New(KindState, "rifa finalizada não pode ser excluída")
	ErrRifaNaoFinalizada = New(KindState, "rifa ainda não foi finalizada")

	// Dependência externa
	ErrFonteExternaIndisponivel = New(KindExternal, "fonte externa de entropia indisponível")

	// Não encontrado
	ErrRifaNaoEncontrada = New(KindNotFound, "rifa não encontrada")
)
