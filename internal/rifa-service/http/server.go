package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/dto"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/model"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/rifaerr"
	"github.com/radieske/caixinha-rifa-service/internal/rifa-service/service"
)

// Server é a casca HTTP do núcleo de rifas: decodifica transporte, delega ao
// service e mapeia os erros tipados para status code. Nenhuma regra de
// negócio vive aqui.
type Server struct {
	log *zap.Logger
	svc *service.Service
}

func NewServer(log *zap.Logger, svc *service.Service) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /caixinhas/{caixinhaId}/rifas", s.listar)
	mux.HandleFunc("POST /caixinhas/{caixinhaId}/rifas", s.criar)
	mux.HandleFunc("GET /caixinhas/{caixinhaId}/rifas/{rifaId}", s.buscar)
	mux.HandleFunc("PUT /caixinhas/{caixinhaId}/rifas/{rifaId}", s.atualizar)
	mux.HandleFunc("DELETE /caixinhas/{caixinhaId}/rifas/{rifaId}", s.excluir)
	mux.HandleFunc("POST /caixinhas/{caixinhaId}/rifas/{rifaId}/cancelar", s.cancelar)
	mux.HandleFunc("POST /caixinhas/{caixinhaId}/rifas/{rifaId}/bilhetes", s.venderBilhete)
	mux.HandleFunc("POST /caixinhas/{caixinhaId}/rifas/{rifaId}/sorteio", s.sortear)
	mux.HandleFunc("GET /caixinhas/{caixinhaId}/rifas/{rifaId}/verificacao", s.verificar)
	mux.HandleFunc("POST /caixinhas/{caixinhaId}/rifas/{rifaId}/comprovante", s.gerarComprovante)
	return mux
}

func (s *Server) listar(w http.ResponseWriter, r *http.Request) {
	rifas, err := s.svc.Listar(r.Context(), r.PathValue("caixinhaId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rifas == nil {
		rifas = []*model.Rifa{}
	}
	writeJSON(w, http.StatusOK, rifas)
}

func (s *Server) criar(w http.ResponseWriter, r *http.Request) {
	var req dto.CriarRifaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErroResponse{Erro: "json inválido"})
		return
	}
	in := service.CriarRifaInput{
		CaixinhaID:         r.PathValue("caixinhaId"),
		Nome:               req.Nome,
		Descricao:          req.Descricao,
		ValorBilhete:       req.ValorBilheteCentavos,
		QuantidadeBilhetes: req.QuantidadeBilhetes,
		DataFim:            req.DataFim,
		Premio:             req.Premio,
	}
	if req.DataInicio != nil {
		in.DataInicio = *req.DataInicio
	}
	rifa, err := s.svc.CriarRifa(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rifa)
}

func (s *Server) buscar(w http.ResponseWriter, r *http.Request) {
	rifa, err := s.svc.Buscar(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rifa)
}

func (s *Server) atualizar(w http.ResponseWriter, r *http.Request) {
	var req dto.AtualizarRifaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErroResponse{Erro: "json inválido"})
		return
	}
	rifa, err := s.svc.AtualizarRifa(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"), service.AtualizarRifaInput{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Premio:    req.Premio,
		DataFim:   req.DataFim,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rifa)
}

func (s *Server) excluir(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ExcluirRifa(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cancelar(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelarRifaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErroResponse{Erro: "json inválido"})
		return
	}
	if err := s.svc.CancelarRifa(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"), req.Motivo); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) venderBilhete(w http.ResponseWriter, r *http.Request) {
	var req dto.VenderBilheteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErroResponse{Erro: "json inválido"})
		return
	}
	err := s.svc.VenderBilhete(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"), req.Numero, req.MembroID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.VendaResponse{
		Numero:   req.Numero,
		MembroID: req.MembroID,
		Status:   "VENDIDO",
	})
}

func (s *Server) sortear(w http.ResponseWriter, r *http.Request) {
	var req dto.SorteioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErroResponse{Erro: "json inválido"})
		return
	}
	resultado, err := s.svc.RealizarSorteio(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"),
		model.MetodoSorteio(req.Metodo), req.Referencia)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultado)
}

func (s *Server) verificar(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.VerificarSorteio(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) gerarComprovante(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GerarComprovante(r.Context(), r.PathValue("caixinhaId"), r.PathValue("rifaId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ComprovanteResponse{Comprovante: json.RawMessage(doc)})
}

// writeError mapeia a taxonomia do núcleo para status HTTP.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("erro interno", zap.Error(err))
		writeJSON(w, status, dto.ErroResponse{Erro: "erro interno"})
		return
	}
	writeJSON(w, status, dto.ErroResponse{Erro: err.Error()})
}

func statusFor(err error) int {
	switch rifaerr.KindOf(err) {
	case rifaerr.KindValidation:
		return http.StatusBadRequest
	case rifaerr.KindConflict:
		return http.StatusConflict
	case rifaerr.KindState:
		return http.StatusUnprocessableEntity
	case rifaerr.KindExternal:
		return http.StatusServiceUnavailable
	case rifaerr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
