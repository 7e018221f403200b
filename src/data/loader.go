package data

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

var requiredColumns = []string{
	"UNDERLYING_LAST", "STRIKE", "QUOTE_DATE", "EXPIRE_DATE", "DTE",
	"P_ASK", "P_BID", "C_ASK", "C_BID",
	"P_LAST", "C_LAST",
}

// normalizeHeader strips the bracket characters some chain vendors wrap
// column names in, e.g. "[QUOTE_DATE]".
func normalizeHeader(name string) string {
	name = strings.ReplaceAll(name, "[", "")
	name = strings.ReplaceAll(name, "]", "")
	return strings.TrimSpace(name)
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, found := present[col]; !found {
			missing = append(missing, col)
		}
	}

	sort.Strings(missing)

	return missing
}

// LoadOptionsCSV reads an options chain CSV, normalizes its column names,
// coerces the pricing columns to numbers (non-numeric values become NaN)
// and returns the indexed dataset.
func LoadOptionsCSV(path string) (*optionmodels.OptionsDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionsCSV: error opening file: %v", err)
	}

	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("LoadOptionsCSV: error reading csv: %v", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("LoadOptionsCSV: empty csv file: %s", path)
	}

	for i, name := range records[0] {
		records[0][i] = normalizeHeader(name)
	}

	if missing := missingColumns(records[0]); len(missing) > 0 {
		return nil, fmt.Errorf("LoadOptionsCSV: missing required columns: %v", missing)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("LoadOptionsCSV: error rewriting csv: %v", err)
	}

	var dtos []*optionmodels.OptionQuoteRowDTO
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &dtos); err != nil {
		return nil, fmt.Errorf("LoadOptionsCSV: error unmarshalling csv: %v", err)
	}

	rows := make([]*optionmodels.OptionQuoteRow, len(dtos))
	for i, dto := range dtos {
		rows[i] = dto.ToModel()
	}

	log.Infof("LoadOptionsCSV: loaded %d rows from %s", len(rows), path)

	return optionmodels.NewOptionsDataset(rows), nil
}
