// Package table holds the pure formatting and parsing rules for the
// CSV-like data files.
//
// The format is deliberately minimal: fields are joined with a comma and
// rows end with '\n'. There is no quoting, so a comma inside a field
// shifts every following column. Dataset.Validate rejects names that would
// be corrupted this way; descriptions may contain commas because only the
// name column is ever read back.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates fields within a row.
const Delimiter = ","

// Column names, in storage order.
const (
	ColumnSeq         = "编号"
	ColumnName        = "名称"
	ColumnDescription = "描述"
)

// Header is the first line of every data file.
var Header = strings.Join([]string{ColumnSeq, ColumnName, ColumnDescription}, Delimiter)

// Record is one sample row. The sequence number is positional and is
// assigned when the row is rendered.
type Record struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Dataset is the ordered list of records written into every data file.
type Dataset []Record

// DefaultDataset returns the built-in sample table.
func DefaultDataset() Dataset {
	return Dataset{
		{Name: "Apple", Description: "A sweet red fruit"},
		{Name: "Banana", Description: "A yellow tropical fruit"},
		{Name: "Cherry", Description: "A small red stone fruit"},
		{Name: "Date", Description: "A sweet brown fruit from palm trees"},
		{Name: "Elderberry", Description: "A tart dark purple berry"},
	}
}

// Names returns the record names in order.
func (d Dataset) Names() []string {
	out := make([]string, len(d))
	for i, r := range d {
		out[i] = r.Name
	}
	return out
}

// Validate reports every record that cannot round-trip through the file
// format.
func (d Dataset) Validate() error {
	var errs []error
	for i, r := range d {
		name := strings.TrimSpace(r.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("records[%d].name is required", i))
		case strings.Contains(r.Name, Delimiter):
			errs = append(errs, fmt.Errorf("records[%d].name %q must not contain %q", i, r.Name, Delimiter))
		case strings.ContainsAny(r.Name, "\r\n"):
			errs = append(errs, fmt.Errorf("records[%d].name must not contain line breaks", i))
		}
		if strings.ContainsAny(r.Description, "\r\n") {
			errs = append(errs, fmt.Errorf("records[%d].description must not contain line breaks", i))
		}
	}
	return errors.Join(errs...)
}
