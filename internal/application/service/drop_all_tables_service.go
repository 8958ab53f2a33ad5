package service

import (
	"MiniBase/internal/platform/repository"
)

// DropAllTablesService deletes every table and index of the data directory.
type DropAllTablesService struct {
	catalog *repository.Catalog
}

func NewDropAllTablesService(catalog *repository.Catalog) *DropAllTablesService {
	return &DropAllTablesService{
		catalog: catalog,
	}
}

type DropAllTablesResult struct {
	Dropped []string
}

func (s *DropAllTablesService) Execute() (DropAllTablesResult, error) {
	dropped, err := s.catalog.DropAll()
	if err != nil {
		return DropAllTablesResult{Dropped: dropped}, err
	}
	return DropAllTablesResult{Dropped: dropped}, nil
}
