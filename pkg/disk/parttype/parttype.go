// Package parttype resolves DOS partition type codes to the name of the
// partition system a slot claims to contain.
//
// The table covers the common type values; the full list is collected at
// http://www.win.tue.nl/~aeb/partitions/partition_types-1.html
package parttype

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/gocarina/gocsv"
)

//go:embed partition_types.csv
var rawTable []byte

type record struct {
	Code  string `csv:"code"`
	Label string `csv:"label"`
}

// labels is populated once at init and never written afterwards.
var labels map[byte]string

func init() {
	reader := csv.NewReader(bytes.NewReader(rawTable))
	reader.Comma = '|'

	var records []record
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		panic(fmt.Errorf("partition type table is broken: %w", err))
	}

	labels = make(map[byte]string, len(records))
	for i, rec := range records {
		code, err := strconv.ParseUint(strings.TrimPrefix(rec.Code, "0x"), 16, 8)
		if err != nil {
			panic(fmt.Errorf("partition type table row %d has bad code %q: %w", i+1, rec.Code, err))
		}
		if _, ok := labels[byte(code)]; ok {
			panic(fmt.Errorf("partition type table row %d duplicates code %s", i+1, rec.Code))
		}
		labels[byte(code)] = rec.Label
	}
}

// Resolve returns the partition system name registered for code. Codes
// missing from the table resolve to "Unknown (0xNN)" carrying the raw
// byte, so callers can always label a slot.
func Resolve(code byte) string {
	if label, ok := labels[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (0x%02X)", code)
}

// Known reports whether code is present in the table.
func Known(code byte) bool {
	_, ok := labels[code]
	return ok
}
