package main

import (
	"fmt"
	"io"
	"os"

	"github.com/codr1/themeforge/internal/migration"
	"github.com/codr1/themeforge/internal/validation"
)

// checkedDocument is a file after migration and validation.
type checkedDocument struct {
	Name       string
	Size       int
	Migrations []string
	Outcome    validation.Outcome
}

// readDocument reads path, or stdin when path is "-".
func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func checkDocument(name string, data []byte) (checkedDocument, error) {
	migrated, err := migration.Default().Apply(data)
	if err != nil {
		return checkedDocument{}, fmt.Errorf("migrate %s: %w", name, err)
	}
	return checkedDocument{
		Name:       name,
		Size:       len(data),
		Migrations: migrated.Applied,
		Outcome:    validation.Validate(migrated.Document),
	}, nil
}

func loadDocument(path string, stdin io.Reader) (checkedDocument, error) {
	data, err := readDocument(path, stdin)
	if err != nil {
		return checkedDocument{}, err
	}
	name := path
	if path == "-" {
		name = "stdin"
	}
	return checkDocument(name, data)
}
