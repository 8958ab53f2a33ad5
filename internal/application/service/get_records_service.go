package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/render"
	"MiniBase/internal/platform/repository"
)

type GetRecordsService struct {
	catalog *repository.Catalog
}

func NewGetRecordsService(catalog *repository.Catalog) *GetRecordsService {
	return &GetRecordsService{
		catalog: catalog,
	}
}

type GetRecordsQuery struct {
	Table  string
	Render bool
}

type GetRecordsResult struct {
	Table     string
	Fields    []domain.Field
	Records   []domain.Record
	Locations []domain.Location
	Text      string
}

func (s *GetRecordsService) Execute(query GetRecordsQuery) (GetRecordsResult, error) {
	t, err := s.catalog.Table(query.Table)
	if err != nil {
		return GetRecordsResult{}, err
	}
	result := GetRecordsResult{
		Table:     t.Name(),
		Fields:    t.Fields(),
		Records:   t.Records(),
		Locations: t.Locations(),
	}
	if query.Render {
		result.Text = render.Records(result.Table, result.Fields, result.Records)
	}
	return result, nil
}
