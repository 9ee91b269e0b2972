package lcfiplot

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Tuple holds the raw tag inputs of every plotted jet of the designated
// collection, one row per jet.
type Tuple struct {
	Columns []string
	Rows    []TupleRow
}

type TupleRow struct {
	Event   int
	Jet     int
	Flavour Flavour
	Values  []float32
}

func newTuple(columns []string) *Tuple {
	return &Tuple{Columns: append([]string(nil), columns...)}
}

func (t *Tuple) add(event, jet int, f Flavour, vec []float32) {
	t.Rows = append(t.Rows, TupleRow{
		Event:   event,
		Jet:     jet,
		Flavour: f,
		Values:  append([]float32(nil), vec...),
	})
}

// WriteCSV writes the tuple with a header line. Missing trailing values
// are left empty.
func (t *Tuple) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Event", "Jet", "TrueJetFlavour"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range t.Rows {
		record[0] = strconv.Itoa(row.Event)
		record[1] = strconv.Itoa(row.Jet)
		record[2] = row.Flavour.String()
		for i := range t.Columns {
			record[3+i] = ""
			if i < len(row.Values) {
				record[3+i] = strconv.FormatFloat(float64(row.Values[i]), 'g', -1, 32)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
