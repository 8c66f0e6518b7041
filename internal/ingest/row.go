// Package ingest reads publication spreadsheets and drives the
// extract-resolve-transform-persist pipeline.
package ingest

import "strings"

// Source spreadsheet column headers (Traditional Chinese).
const (
	colCitation      = "論文"
	colAffiliation   = "學校單位"
	colCorresponding = "姓名"
)

// flagColumns maps vessel/center column headers to their flag names.
// Headers outside this table and the three fixed columns above are ignored.
var flagColumns = map[string]string{
	"海研一號":     "OR1",
	"海研二號":     "OR2",
	"海研三號":     "OR3",
	"海研五號":     "OR5",
	"新海研1號":    "NOR1",
	"新海研2號":    "NOR2",
	"新海研3號":    "NOR3",
	"勵進":       "LEGEND",
	"新海研1號貴儀中心": "MIC1",
	"新海研2號貴儀中心": "MIC2",
	"新海研3號貴儀中心": "MIC3",
	"海洋學門資料庫":   "ODB",
}

// SourceRow is one spreadsheet record, immutable once read.
type SourceRow struct {
	Citation        string
	AffiliationTW   string
	CorrespondingTW string
	Flags           map[string]bool
}

// coerceBool interprets a spreadsheet cell as a boolean. Empty cells and
// explicit negatives are false; any other content marks the flag set.
func coerceBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
