package table

import (
	"net/http"

	"MiniBase/internal/application/service"
	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/server/handler"

	"github.com/go-chi/chi/v5"
)

func (h *TableHandler) BeginTransaction(w http.ResponseWriter, r *http.Request) {
	h.transaction(w, r, service.BeginTransaction, http.StatusCreated)
}

func (h *TableHandler) CommitTransaction(w http.ResponseWriter, r *http.Request) {
	h.transaction(w, r, service.CommitTransaction, http.StatusOK)
}

func (h *TableHandler) AbortTransaction(w http.ResponseWriter, r *http.Request) {
	h.transaction(w, r, service.AbortTransaction, http.StatusOK)
}

func (h *TableHandler) transaction(w http.ResponseWriter, r *http.Request, action service.TransactionAction, status int) {
	result, err := h.transactionService.Execute(service.TableTransactionCommand{
		Table:  chi.URLParam(r, "table"),
		Action: action,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, status, api.TransactionResponse{
		TransactionId: result.TransactionId,
		State:         result.State.String(),
	})
}
