// Package publication defines the persisted record shape for resolved
// scholarly publications.
package publication

// UnknownDate is the sentinel stored when no publication date is available.
const UnknownDate = "Unknown"

// FlagNames lists the research vessel / instrument center flag columns in
// their fixed storage order. OR* are research vessels, NOR* the new research
// vessels, LEGEND the R/V Legend, MIC* the vessel instrument centers and ODB
// the Ocean Data Bank.
var FlagNames = []string{
	"OR1", "OR2", "OR3", "OR5",
	"NOR1", "NOR2", "NOR3",
	"LEGEND",
	"MIC1", "MIC2", "MIC3",
	"ODB",
}

// Publication is one resolved, persistable record. DOI is the primary key;
// a publication without a DOI is never persisted.
type Publication struct {
	DOI             string
	Title           string
	FirstAuthor     string
	Authors         string
	Publisher       string
	Journal         string
	PublishedYear   *int   // nil when unknown
	PublishedDate   string // dash-joined date parts, or UnknownDate
	Abstract        string
	URL             string
	AffiliationTW   string
	CorrespondingTW string
	Flags           map[string]bool
}

// Flag returns the named flag, defaulting to false when unset.
func (p Publication) Flag(name string) bool {
	return p.Flags[name]
}

// IsKnownFlag reports whether name is one of the fixed flag columns.
func IsKnownFlag(name string) bool {
	for _, f := range FlagNames {
		if f == name {
			return true
		}
	}
	return false
}
