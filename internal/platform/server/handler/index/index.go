package index

import (
	"net/http"

	"MiniBase/internal/application/service"
	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/server/handler"

	"github.com/go-chi/chi/v5"
)

type IndexHandler struct {
	createService *service.CreateIndexService
	searchService *service.SearchIndexService
}

func NewIndexHandler(createService *service.CreateIndexService, searchService *service.SearchIndexService) *IndexHandler {
	return &IndexHandler{
		createService: createService,
		searchService: searchService,
	}
}

func (h *IndexHandler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var request api.CreateIndexRequest
	if err := handler.ReadJSON(r, &request); err != nil {
		handler.WriteError(w, err)
		return
	}
	result, err := h.createService.Execute(service.CreateIndexCommand{
		Table: chi.URLParam(r, "table"),
		Field: request.Field,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, api.IndexResponse{
		Table:   result.Table,
		Field:   result.Field,
		Height:  result.Height,
		Entries: result.Entries,
	})
}

func (h *IndexHandler) Search(w http.ResponseWriter, r *http.Request) {
	table, key := chi.URLParam(r, "table"), r.URL.Query().Get("key")
	result, err := h.searchService.Execute(service.SearchIndexQuery{
		Table: table,
		Key:   key,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.SearchResponse{
		Table:     table,
		Field:     result.Field,
		Key:       key,
		Locations: result.Locations,
		Records:   api.RecordValues(result.Records),
	})
}
