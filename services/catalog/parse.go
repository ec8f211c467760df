package catalog

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldRequirements = "requirements"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Posting is one job posting served by the development backend.
type Posting struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

// parseFile reads .csv, .json, or a .zip holding any number of those.
func parseFile(path string) ([]Posting, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parseCSV(file)
	case ".json":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parseJSON(file)
	case ".zip":
		return parseZip(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// parseCSV maps columns by the header row. Columns other than title, description and
// requirements are ignored; rows without a title are skipped.
func parseCSV(r io.Reader) ([]Posting, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns[fieldTitle]; !ok {
		return nil, fmt.Errorf("csv header has no %q column", fieldTitle)
	}

	column := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var postings []Posting
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		posting := Posting{
			Title:        column(row, fieldTitle),
			Description:  column(row, fieldDescription),
			Requirements: column(row, fieldRequirements),
		}
		if len(posting.Title) == 0 {
			continue
		}
		postings = append(postings, posting)
	}

	return postings, nil
}

func parseJSON(r io.Reader) ([]Posting, error) {
	var records []Posting
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode json catalog: %w", err)
	}

	postings := make([]Posting, 0, len(records))
	for _, record := range records {
		if len(strings.TrimSpace(record.Title)) == 0 {
			continue
		}
		record.ID = ""
		postings = append(postings, record)
	}

	return postings, nil
}

func parseZip(path string) ([]Posting, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip catalog: %w", err)
	}
	defer archive.Close()

	var postings []Posting
	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		var parse func(io.Reader) ([]Posting, error)
		switch strings.ToLower(filepath.Ext(entry.Name)) {
		case ".csv":
			parse = parseCSV
		case ".json":
			parse = parseJSON
		default:
			continue
		}

		file, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in zip catalog: %w", entry.Name, err)
		}
		entryPostings, err := parse(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s in zip catalog: %w", entry.Name, err)
		}
		postings = append(postings, entryPostings...)
	}

	return postings, nil
}
