package service

import (
	"MiniBase/internal/platform/repository"
)

type DropTableService struct {
	catalog *repository.Catalog
}

func NewDropTableService(catalog *repository.Catalog) *DropTableService {
	return &DropTableService{
		catalog: catalog,
	}
}

type DropTableCommand struct {
	Name string
}

func (s *DropTableService) Execute(command DropTableCommand) error {
	return s.catalog.Drop(command.Name)
}
