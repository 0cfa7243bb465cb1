package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Header returns ID followed by the variable names.
func (d *Dataset) Header() []string {
	return append([]string{IDColumn}, d.Columns...)
}

// WriteCSV writes the header and one record per case. Values use the shortest
// representation that parses back to the same float64.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	raw := d.Data.RawData()
	cols := d.NumVars()
	rec := make([]string, cols+1)
	var i, j int
	for i = 0; i < d.NumCases(); i++ {
		rec[0] = strconv.Itoa(d.CaseIDs[i])
		for j = 0; j < cols; j++ {
			rec[j+1] = strconv.FormatFloat(raw[i*cols+j], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write case %d: %w", d.CaseIDs[i], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonExport is the document written by WriteJSON.
type jsonExport struct {
	Name    string    `json:"name"`
	ID      string    `json:"id"`
	Columns []string  `json:"columns"`
	Cases   []jsonRow `json:"cases"`
	Meta    Meta      `json:"meta"`
}

type jsonRow struct {
	ID     int       `json:"id"`
	Values []float64 `json:"values"`
}

// WriteJSON writes the dataset as one indented JSON document.
func WriteJSON(w io.Writer, d *Dataset) error {
	doc := jsonExport{
		Name:    d.Name,
		ID:      d.ID,
		Columns: d.Columns,
		Cases:   make([]jsonRow, d.NumCases()),
		Meta:    d.Meta,
	}
	for i := range doc.Cases {
		row, err := d.Data.Row(i)
		if err != nil {
			return err
		}
		doc.Cases[i] = jsonRow{ID: d.CaseIDs[i], Values: row}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
