package ingest

import (
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	data := strings.Join([]string{
		"論文,學校單位,姓名,海研一號,勵進,海洋學門資料庫,備註",
		`"Smith (2020) Ocean warming. Nature.",國立臺灣大學,王小明,v,,1,ignored`,
		`"Doe (2021) Coral loss. Science.",,,0,yes,false,`,
	}, "\n")

	rows, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Citation != "Smith (2020) Ocean warming. Nature." {
		t.Errorf("Citation = %q", first.Citation)
	}
	if first.AffiliationTW != "國立臺灣大學" || first.CorrespondingTW != "王小明" {
		t.Errorf("row fields = %q / %q", first.AffiliationTW, first.CorrespondingTW)
	}
	if !first.Flags["OR1"] || first.Flags["LEGEND"] || !first.Flags["ODB"] {
		t.Errorf("Flags = %v", first.Flags)
	}

	second := rows[1]
	if second.Flags["OR1"] || !second.Flags["LEGEND"] || second.Flags["ODB"] {
		t.Errorf("Flags = %v, want explicit negatives false", second.Flags)
	}
}

func TestRead_BOMHeader(t *testing.T) {
	data := "\uFEFF論文\nSome citation\n"
	rows, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Citation != "Some citation" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRead_MissingCitationColumn(t *testing.T) {
	data := "學校單位,姓名\na,b\n"
	if _, err := Read(strings.NewReader(data)); err == nil {
		t.Fatal("Read() error = nil, want missing column error")
	}
}

func TestRead_RaggedRows(t *testing.T) {
	data := "論文,海研一號\nShort row\n"
	rows, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if rows[0].Citation != "Short row" {
		t.Errorf("Citation = %q", rows[0].Citation)
	}
	if rows[0].Flags["OR1"] {
		t.Errorf("missing cell should leave flag unset")
	}
}

func TestCoerceBool(t *testing.T) {
	falsy := []string{"", " ", "0", "false", "No", "FALSE"}
	for _, cell := range falsy {
		if coerceBool(cell) {
			t.Errorf("coerceBool(%q) = true, want false", cell)
		}
	}
	truthy := []string{"1", "v", "yes", "海研一號", "x "}
	for _, cell := range truthy {
		if !coerceBool(cell) {
			t.Errorf("coerceBool(%q) = false, want true", cell)
		}
	}
}
