package repository

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
)

var ErrMissingColumn = errors.New("missing csv column")

const (
	columnName       = "name"
	columnEmail      = "email"
	columnRepository = "repo"
	columnExternalID = "external_id"
)

var recordHeader = []string{columnName, columnEmail, columnRepository, columnExternalID}

var columnAliases = map[string]string{
	"name":          columnName,
	"author.name":   columnName,
	"author_name":   columnName,
	"email":         columnEmail,
	"author.email":  columnEmail,
	"author_email":  columnEmail,
	"repo":          columnRepository,
	"repository":    columnRepository,
	"repository_id": columnRepository,
	"external_id":   columnExternalID,
	"author_id":     columnExternalID,
	"author.id":     columnExternalID,
}

// ReadRecordsCSV reads records from a csv stream whose first row names the columns.
// Name and email columns are required; repository and external id are optional.
func ReadRecordsCSV(r io.Reader) ([]entity.Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}

	positions := make(map[string]int, len(recordHeader))
	for i, column := range header {
		column = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))
		if canonical, ok := columnAliases[column]; ok {
			if _, seen := positions[canonical]; !seen {
				positions[canonical] = i
			}
		}
	}
	for _, required := range []string{columnName, columnEmail} {
		if _, ok := positions[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(row []string, column string) string {
		i, ok := positions[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]entity.Record, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, entity.Record{
			Name:       field(row, columnName),
			Email:      field(row, columnEmail),
			Repository: field(row, columnRepository),
			ExternalID: field(row, columnExternalID),
		})
	}
	return records, nil
}

func WriteRecordsCSV(w io.Writer, records []entity.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Name, r.Email, r.Repository, r.ExternalID}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteIdentities writes one "names||emails" line per identity, sorted.
func WriteIdentities(w io.Writer, identities *entity.Identities) error {
	bw := bufio.NewWriter(w)
	for _, line := range identities.Lines() {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
