package api

import "MiniBase/internal/domain"

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	InstanceId string `json:"instance_id,omitempty"`
}

type FieldResponse struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Length int32  `json:"length"`
}

type TableResponse struct {
	Name   string          `json:"name"`
	Fields []FieldResponse `json:"fields"`
}

type TablesResponse struct {
	Tables []string `json:"tables"`
}

type RecordsResponse struct {
	Table     string            `json:"table"`
	Fields    []FieldResponse   `json:"fields"`
	Records   [][]any           `json:"records"`
	Locations []domain.Location `json:"locations"`
}

type InsertRecordResponse struct {
	Location domain.Location `json:"location"`
}

type AffectedResponse struct {
	Affected int `json:"affected"`
}

type TransactionResponse struct {
	TransactionId int32  `json:"transaction_id"`
	State         string `json:"state"`
}

type IndexResponse struct {
	Table   string `json:"table"`
	Field   string `json:"field"`
	Height  int32  `json:"height"`
	Entries int    `json:"entries"`
}

type SearchResponse struct {
	Table     string            `json:"table"`
	Field     string            `json:"field"`
	Key       string            `json:"key"`
	Locations []domain.Location `json:"locations"`
	Records   [][]any           `json:"records"`
}

func FieldResponses(fields []domain.Field) []FieldResponse {
	out := make([]FieldResponse, len(fields))
	for i, f := range fields {
		out[i] = FieldResponse{Name: f.Name, Type: f.Type.String(), Length: f.Length}
	}
	return out
}

func RecordValues(records []domain.Record) [][]any {
	out := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v.Interface()
		}
		out[i] = row
	}
	return out
}
