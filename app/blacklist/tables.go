package blacklist

import (
	"bufio"
	"compress/gzip"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
)

var ErrInvalidInput = errors.New("invalid blacklist input")

type Table string

const (
	TableDomains         Table = "domains"
	TableEmails          Table = "emails"
	TableNames           Table = "names"
	TableTopLevelDomains Table = "top_level_domains"
	TablePopularNames    Table = "popular_names"
	TablePopularEmails   Table = "popular_emails"
)

var AllTables = []Table{
	TableDomains,
	TableEmails,
	TableNames,
	TableTopLevelDomains,
	TablePopularNames,
	TablePopularEmails,
}

//go:embed data/*.csv.gz
var embedded embed.FS

func ParseTable(name string) (Table, error) {
	for _, table := range AllTables {
		if string(table) == name {
			return table, nil
		}
	}
	return "", fmt.Errorf("%w: unknown table %q", ErrInvalidInput, name)
}

// Tables is the immutable set of static lists consulted by Filter.
// Entries are stored normalized and lower-cased.
type Tables struct {
	sets map[Table]map[string]struct{}
}

func NewTables(entries map[Table][]string) (*Tables, error) {
	t := &Tables{sets: make(map[Table]map[string]struct{}, len(AllTables))}
	for _, table := range AllTables {
		t.sets[table] = make(map[string]struct{})
	}

	for table, values := range entries {
		set, ok := t.sets[table]
		if !ok {
			return nil, fmt.Errorf("%w: unknown table %q", ErrInvalidInput, table)
		}
		for _, value := range values {
			if err := addEntry(set, value); err != nil {
				return nil, fmt.Errorf("table %s: %w", table, err)
			}
		}
	}

	return t, nil
}

// LoadTables reads "<table>.csv.gz" for every table from fsys, one entry per line.
func LoadTables(fsys fs.FS) (*Tables, error) {
	t := &Tables{sets: make(map[Table]map[string]struct{}, len(AllTables))}
	for _, table := range AllTables {
		set, err := readTableFile(fsys, string(table)+".csv.gz")
		if err != nil {
			return nil, fmt.Errorf("load table %s: %w", table, err)
		}
		t.sets[table] = set
	}
	return t, nil
}

// DefaultTables returns the tables shipped with the binary.
func DefaultTables() (*Tables, error) {
	data, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadTables(data)
}

func (t *Tables) Contains(table Table, value string) bool {
	_, ok := t.sets[table][value]
	return ok
}

func (t *Tables) Len(table Table) int {
	return len(t.sets[table])
}

func readTableFile(fsys fs.FS, name string) (set map[string]struct{}, err error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		errClose := file.Close()
		if err == nil {
			err = errClose
		}
	}()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	set = make(map[string]struct{})
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err = addEntry(set, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return set, nil
}

func addEntry(set map[string]struct{}, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidInput, value)
	}
	value = normalize.Normalize(value, true)
	if value == "" {
		return nil
	}
	set[value] = struct{}{}
	return nil
}
