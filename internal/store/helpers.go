package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"animeapi/internal/anime"
)

var recordColumns = func() string {
	names := make([]string, 0, len(anime.Fields)+3)
	names = append(names, "id", "title")
	for _, field := range anime.Fields {
		names = append(names, field.Name)
	}
	names = append(names, "data_hash")
	return strings.Join(names, ", ")
}()

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(scanner rowScanner) (int64, *anime.Record, error) {
	var (
		id     int64
		title  string
		hash   string
		values = make([]sql.NullString, len(anime.Fields))
	)
	dest := make([]any, 0, len(anime.Fields)+3)
	dest = append(dest, &id, &title)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &hash)
	if err := scanner.Scan(dest...); err != nil {
		return 0, nil, err
	}

	record := &anime.Record{Title: title, DataHash: hash}
	for i, field := range anime.Fields {
		if !values[i].Valid {
			continue
		}
		if err := field.Set(record, values[i].String); err != nil {
			return 0, nil, err
		}
	}
	return id, record, nil
}

func recordArgs(record *anime.Record) []any {
	args := make([]any, 0, len(anime.Fields)+1)
	args = append(args, record.Title)
	for _, field := range anime.Fields {
		args = append(args, field.Value(record))
	}
	return args
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

func chunks[T any](values []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(values); start += size {
		out = append(out, values[start:min(start+size, len(values))])
	}
	return out
}

func int64Args(values []int64) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
