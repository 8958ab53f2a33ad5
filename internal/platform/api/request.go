package api

type FieldRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Length int32  `json:"length"`
}

type CreateTableRequest struct {
	Name   string         `json:"name"`
	Fields []FieldRequest `json:"fields"`
}

type InsertRecordRequest struct {
	Values []string `json:"values"`
}

type UpdateRecordRequest struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type CreateIndexRequest struct {
	Field string `json:"field"`
}
