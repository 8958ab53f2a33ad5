package service

import (
	"MiniBase/internal/platform/repository"
)

type CreateIndexService struct {
	catalog *repository.Catalog
}

func NewCreateIndexService(catalog *repository.Catalog) *CreateIndexService {
	return &CreateIndexService{
		catalog: catalog,
	}
}

type CreateIndexCommand struct {
	Table string
	Field string
}

type CreateIndexResult struct {
	Table   string
	Field   string
	Height  int32
	Entries int
}

func (s *CreateIndexService) Execute(command CreateIndexCommand) (CreateIndexResult, error) {
	ix, err := s.catalog.CreateIndex(command.Table, command.Field)
	if err != nil {
		return CreateIndexResult{}, err
	}
	entries, err := ix.Entries()
	if err != nil {
		return CreateIndexResult{}, err
	}
	return CreateIndexResult{
		Table:   command.Table,
		Field:   ix.Field(),
		Height:  ix.Height(),
		Entries: len(entries),
	}, nil
}
