package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/repository"
)

type CreateTableService struct {
	catalog *repository.Catalog
}

func NewCreateTableService(catalog *repository.Catalog) *CreateTableService {
	return &CreateTableService{
		catalog: catalog,
	}
}

type CreateTableCommand struct {
	Name   string
	Fields []domain.Field
}

type CreateTableResult struct {
	Name   string
	Fields []domain.Field
}

func (s *CreateTableService) Execute(command CreateTableCommand) (CreateTableResult, error) {
	t, err := s.catalog.Create(command.Name, command.Fields)
	if err != nil {
		return CreateTableResult{}, err
	}
	return CreateTableResult{Name: t.Name(), Fields: t.Fields()}, nil
}
