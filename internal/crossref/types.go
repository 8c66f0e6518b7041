package crossref

// Author is a Crossref work author.
type Author struct {
	Given    string `json:"given,omitempty"`
	Family   string `json:"family,omitempty"`
	Sequence string `json:"sequence,omitempty"`
	ORCID    string `json:"ORCID,omitempty"`
}

// PartialDate holds Crossref date-parts: an outer list with one entry per
// date, each entry [year, month, day] with trailing components optional.
type PartialDate struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}

// Parts returns the first date-parts entry, or nil when absent.
func (d PartialDate) Parts() []int {
	if len(d.DateParts) == 0 {
		return nil
	}
	return d.DateParts[0]
}

// Work is the subset of a Crossref works-API item used by the pipeline, as
// documented at https://www.crossref.org/documentation/retrieve-metadata/rest-api/.
type Work struct {
	DOI                 string      `json:"DOI"`
	Title               []string    `json:"title,omitempty"`
	Author              []Author    `json:"author,omitempty"`
	Publisher           string      `json:"publisher,omitempty"`
	ContainerTitle      []string    `json:"container-title,omitempty"`
	ShortContainerTitle []string    `json:"short-container-title,omitempty"`
	PublishedPrint      PartialDate `json:"published-print,omitempty"`
	PublishedOnline     PartialDate `json:"published-online,omitempty"`
	Abstract            string      `json:"abstract,omitempty"`
	URL                 string      `json:"URL,omitempty"`
	Type                string      `json:"type,omitempty"`
}

// PrimaryTitle returns the first title, or "" when the work has none.
// Crossref models titles as a single-element list.
func (w Work) PrimaryTitle() string {
	if len(w.Title) == 0 {
		return ""
	}
	return w.Title[0]
}

// ShortJournal returns the abbreviated journal name, or "" when absent.
func (w Work) ShortJournal() string {
	if len(w.ShortContainerTitle) == 0 {
		return ""
	}
	return w.ShortContainerTitle[0]
}

// worksResponse is the envelope around a works query result.
type worksResponse struct {
	Status  string `json:"status"`
	Message struct {
		Items []Work `json:"items"`
	} `json:"message"`
}
