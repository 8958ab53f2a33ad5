package service

import (
	"MiniBase/internal/platform/repository"
)

type DeleteRecordService struct {
	catalog *repository.Catalog
}

func NewDeleteRecordService(catalog *repository.Catalog) *DeleteRecordService {
	return &DeleteRecordService{
		catalog: catalog,
	}
}

type DeleteRecordCommand struct {
	Table string
	Field string
	Value string
}

type DeleteRecordResult struct {
	Deleted int
}

func (s *DeleteRecordService) Execute(command DeleteRecordCommand) (DeleteRecordResult, error) {
	t, err := s.catalog.Table(command.Table)
	if err != nil {
		return DeleteRecordResult{}, err
	}
	n, err := t.Delete(command.Field, command.Value)
	if err != nil {
		return DeleteRecordResult{}, err
	}
	return DeleteRecordResult{Deleted: n}, nil
}
