package table

import (
	"net/http"

	"MiniBase/internal/application/service"
	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/server/handler"

	"github.com/go-chi/chi/v5"
)

// GetRecords answers with JSON, or with the rendered grid when format=text.
func (h *TableHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("format") == "text"
	result, err := h.recordsService.Execute(service.GetRecordsQuery{
		Table:  chi.URLParam(r, "table"),
		Render: text,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	if text {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(result.Text))
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.RecordsResponse{
		Table:     result.Table,
		Fields:    api.FieldResponses(result.Fields),
		Records:   api.RecordValues(result.Records),
		Locations: result.Locations,
	})
}

func (h *TableHandler) InsertRecord(w http.ResponseWriter, r *http.Request) {
	var request api.InsertRecordRequest
	if err := handler.ReadJSON(r, &request); err != nil {
		handler.WriteError(w, err)
		return
	}
	result, err := h.insertService.Execute(service.InsertRecordCommand{
		Table:  chi.URLParam(r, "table"),
		Values: request.Values,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, api.InsertRecordResponse{Location: result.Location})
}

func (h *TableHandler) UpdateRecords(w http.ResponseWriter, r *http.Request) {
	var request api.UpdateRecordRequest
	if err := handler.ReadJSON(r, &request); err != nil {
		handler.WriteError(w, err)
		return
	}
	result, err := h.updateService.Execute(service.UpdateRecordCommand{
		Table:    chi.URLParam(r, "table"),
		Field:    request.Field,
		OldValue: request.Old,
		NewValue: request.New,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.AffectedResponse{Affected: result.Updated})
}

func (h *TableHandler) DeleteRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.deleteService.Execute(service.DeleteRecordCommand{
		Table: chi.URLParam(r, "table"),
		Field: query.Get("field"),
		Value: query.Get("value"),
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.AffectedResponse{Affected: result.Deleted})
}
