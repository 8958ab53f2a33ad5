package service

import (
	"MiniBase/internal/platform/repository"
)

type UpdateRecordService struct {
	catalog *repository.Catalog
}

func NewUpdateRecordService(catalog *repository.Catalog) *UpdateRecordService {
	return &UpdateRecordService{
		catalog: catalog,
	}
}

type UpdateRecordCommand struct {
	Table    string
	Field    string
	OldValue string
	NewValue string
}

type UpdateRecordResult struct {
	Updated int
}

func (s *UpdateRecordService) Execute(command UpdateRecordCommand) (UpdateRecordResult, error) {
	t, err := s.catalog.Table(command.Table)
	if err != nil {
		return UpdateRecordResult{}, err
	}
	n, err := t.Update(command.Field, command.OldValue, command.NewValue)
	if err != nil {
		return UpdateRecordResult{}, err
	}
	return UpdateRecordResult{Updated: n}, nil
}
