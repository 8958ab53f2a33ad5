package storage

import (
	"path/filepath"

	"MiniBase/internal/domain"

	"github.com/phuslu/log"
)

const (
	TableExt = ".dat"
	IndexExt = ".ind"
)

// Env is shared by every table and index handle of one process.
type Env struct {
	DataDirectory string
	BlockSize     int
	Transactions  *domain.TransactionManager
	Logger        log.Logger
}

func (e *Env) Path(name, ext string) string {
	return filepath.Join(e.DataDirectory, name+ext)
}
