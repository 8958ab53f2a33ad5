package table

import (
	"net/http"

	"MiniBase/internal/application/service"
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/server/handler"

	"github.com/go-chi/chi/v5"
)

type TableHandler struct {
	createService      *service.CreateTableService
	listService        *service.ListTablesService
	dropService        *service.DropTableService
	fieldsService      *service.GetFieldsService
	recordsService     *service.GetRecordsService
	insertService      *service.InsertRecordService
	updateService      *service.UpdateRecordService
	deleteService      *service.DeleteRecordService
	transactionService *service.TableTransactionService
	dropAllService     *service.DropAllTablesService
}

func NewTableHandler(createService *service.CreateTableService,
	listService *service.ListTablesService,
	dropService *service.DropTableService,
	fieldsService *service.GetFieldsService,
	recordsService *service.GetRecordsService,
	insertService *service.InsertRecordService,
	updateService *service.UpdateRecordService,
	deleteService *service.DeleteRecordService,
	transactionService *service.TableTransactionService,
	dropAllService *service.DropAllTablesService) *TableHandler {
	return &TableHandler{
		createService:      createService,
		listService:        listService,
		dropService:        dropService,
		fieldsService:      fieldsService,
		recordsService:     recordsService,
		insertService:      insertService,
		updateService:      updateService,
		deleteService:      deleteService,
		transactionService: transactionService,
		dropAllService:     dropAllService,
	}
}

func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.listService.Execute()
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.TablesResponse{Tables: result.Tables})
}

func (h *TableHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var request api.CreateTableRequest
	if err := handler.ReadJSON(r, &request); err != nil {
		handler.WriteError(w, err)
		return
	}
	fields := make([]domain.Field, 0, len(request.Fields))
	for _, f := range request.Fields {
		fieldType, err := domain.ParseFieldType(f.Type)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		fields = append(fields, domain.NewField(f.Name, fieldType, f.Length))
	}
	result, err := h.createService.Execute(service.CreateTableCommand{
		Name:   request.Name,
		Fields: fields,
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, api.TableResponse{
		Name:   result.Name,
		Fields: api.FieldResponses(result.Fields),
	})
}

func (h *TableHandler) DropTable(w http.ResponseWriter, r *http.Request) {
	err := h.dropService.Execute(service.DropTableCommand{
		Name: chi.URLParam(r, "table"),
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DropAllTables deletes every table and answers with the dropped names.
func (h *TableHandler) DropAllTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.dropAllService.Execute()
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.TablesResponse{Tables: result.Dropped})
}

func (h *TableHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	result, err := h.fieldsService.Execute(service.GetFieldsQuery{
		Table: chi.URLParam(r, "table"),
	})
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, api.TableResponse{
		Name:   result.Table,
		Fields: api.FieldResponses(result.Fields),
	})
}
