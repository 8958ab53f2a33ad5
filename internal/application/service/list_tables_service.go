package service

import (
	"MiniBase/internal/platform/repository"
)

type ListTablesService struct {
	catalog *repository.Catalog
}

func NewListTablesService(catalog *repository.Catalog) *ListTablesService {
	return &ListTablesService{
		catalog: catalog,
	}
}

type ListTablesResult struct {
	Tables []string
}

func (s *ListTablesService) Execute() (ListTablesResult, error) {
	names, err := s.catalog.List()
	if err != nil {
		return ListTablesResult{}, err
	}
	return ListTablesResult{Tables: names}, nil
}
