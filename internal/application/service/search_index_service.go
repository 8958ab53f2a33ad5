package service

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/repository"
	"MiniBase/internal/platform/storage/codec"
)

type SearchIndexService struct {
	catalog *repository.Catalog
}

func NewSearchIndexService(catalog *repository.Catalog) *SearchIndexService {
	return &SearchIndexService{
		catalog: catalog,
	}
}

type SearchIndexQuery struct {
	Table string
	Key   string
}

type SearchIndexResult struct {
	Field     string
	Locations []domain.Location
	Records   []domain.Record
}

// searchKey formats key the way the indexed field stores its values, so "030" finds 30.
func searchKey(fields []domain.Field, field, key string) (string, error) {
	i, err := domain.FieldIndex(fields, field)
	if err != nil {
		return key, nil
	}
	v, err := codec.ParseValue(fields[i], key)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Execute looks the key up and resolves the hits against the table.
// Locations that no longer hold a record are returned without one.
func (s *SearchIndexService) Execute(query SearchIndexQuery) (SearchIndexResult, error) {
	ix, err := s.catalog.Index(query.Table)
	if err != nil {
		return SearchIndexResult{}, err
	}
	t, err := s.catalog.Table(query.Table)
	if err != nil {
		return SearchIndexResult{}, err
	}
	key, err := searchKey(t.Fields(), ix.Field(), query.Key)
	if err != nil {
		return SearchIndexResult{}, err
	}
	locations, err := ix.Search(key)
	if err != nil {
		return SearchIndexResult{}, err
	}

	records, positions := t.Records(), t.Locations()
	byLocation := make(map[domain.Location]domain.Record, len(positions))
	for i, loc := range positions {
		byLocation[loc] = records[i]
	}
	result := SearchIndexResult{Field: ix.Field(), Locations: locations, Records: []domain.Record{}}
	for _, loc := range locations {
		if rec, ok := byLocation[loc]; ok {
			result.Records = append(result.Records, rec)
		}
	}
	return result, nil
}
