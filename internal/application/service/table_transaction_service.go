package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/repository"
)

type TransactionAction int

const (
	BeginTransaction TransactionAction = iota
	CommitTransaction
	AbortTransaction
)

// TableTransactionService drives the explicit transaction bound to a table handle.
type TableTransactionService struct {
	catalog *repository.Catalog
}

func NewTableTransactionService(catalog *repository.Catalog) *TableTransactionService {
	return &TableTransactionService{
		catalog: catalog,
	}
}

type TableTransactionCommand struct {
	Table  string
	Action TransactionAction
}

type TableTransactionResult struct {
	TransactionId int32
	State         domain.TransactionState
}

func (s *TableTransactionService) Execute(command TableTransactionCommand) (TableTransactionResult, error) {
	t, err := s.catalog.Table(command.Table)
	if err != nil {
		return TableTransactionResult{}, err
	}
	if command.Action == BeginTransaction {
		id, err := t.Begin()
		if err != nil {
			return TableTransactionResult{}, err
		}
		return TableTransactionResult{TransactionId: id, State: domain.TransactionActive}, nil
	}

	id, ok := t.TransactionId()
	if !ok {
		return TableTransactionResult{}, domain.TransactionStateError("table %q has no transaction", command.Table)
	}
	switch command.Action {
	case CommitTransaction:
		if err := t.Commit(); err != nil {
			return TableTransactionResult{}, err
		}
		return TableTransactionResult{TransactionId: id, State: domain.TransactionCommitted}, nil
	case AbortTransaction:
		if err := t.Abort(); err != nil {
			return TableTransactionResult{}, err
		}
		return TableTransactionResult{TransactionId: id, State: domain.TransactionAborted}, nil
	}
	return TableTransactionResult{}, domain.TransactionStateError("unknown transaction action %d", command.Action)
}
