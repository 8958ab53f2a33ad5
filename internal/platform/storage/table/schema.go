package table

import (
	"MiniBase/internal/domain"
)

// SchemaPrompt supplies the fields of a table that does not exist yet.
type SchemaPrompt func(name string) ([]domain.Field, error)

func StaticSchema(fields []domain.Field) SchemaPrompt {
	return func(string) ([]domain.Field, error) {
		out := make([]domain.Field, len(fields))
		copy(out, fields)
		return out, nil
	}
}

// NoSchema only opens tables that already exist.
func NoSchema(name string) ([]domain.Field, error) {
	return nil, domain.NotFoundError("table %q", name)
}
