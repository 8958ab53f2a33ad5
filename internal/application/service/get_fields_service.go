package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/repository"
)

type GetFieldsService struct {
	catalog *repository.Catalog
}

func NewGetFieldsService(catalog *repository.Catalog) *GetFieldsService {
	return &GetFieldsService{
		catalog: catalog,
	}
}

type GetFieldsQuery struct {
	Table string
}

type GetFieldsResult struct {
	Table  string
	Fields []domain.Field
}

func (s *GetFieldsService) Execute(query GetFieldsQuery) (GetFieldsResult, error) {
	t, err := s.catalog.Table(query.Table)
	if err != nil {
		return GetFieldsResult{}, err
	}
	return GetFieldsResult{Table: t.Name(), Fields: t.Fields()}, nil
}
