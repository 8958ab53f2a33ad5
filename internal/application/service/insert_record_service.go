package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/repository"
)

type InsertRecordService struct {
	catalog *repository.Catalog
}

func NewInsertRecordService(catalog *repository.Catalog) *InsertRecordService {
	return &InsertRecordService{
		catalog: catalog,
	}
}

type InsertRecordCommand struct {
	Table  string
	Values []string
}

type InsertRecordResult struct {
	Location domain.Location
}

func (s *InsertRecordService) Execute(command InsertRecordCommand) (InsertRecordResult, error) {
	t, err := s.catalog.Table(command.Table)
	if err != nil {
		return InsertRecordResult{}, err
	}
	loc, err := t.Insert(command.Values)
	if err != nil {
		return InsertRecordResult{}, err
	}
	return InsertRecordResult{Location: loc}, nil
}
