package postgres

// MediaQuery narrows and orders a catalog listing. Zero values mean
// "no constraint"; sort keys are validated by sortColumn before they
// reach SQL.
type MediaQuery struct {
	Search           string
	Genre            string
	OriginalLanguage string
	YearPrefix       string
	YearAnyOf        []string
	ReleaseAfter     string
	IncludeAdult     bool
	MinVoteCount     int
	MinRating        float64
	MaxRating        float64
	MinPopularity    float64
	SortKey          string
	SortAsc          bool
	Limit            int
	Offset           int
}

const (
	SortPopularity  = "popularity"
	SortRating      = "rating"
	SortReleaseDate = "release_date"
	SortTitle       = "title"
	SortVoteCount   = "vote_count"
)

// sortColumn maps a public sort key onto a real column. titleColumn and
// dateColumn differ between the two media tables.
func sortColumn(key, titleColumn, dateColumn string) string {
	switch key {
	case SortRating:
		return "vote_average"
	case SortReleaseDate:
		return dateColumn
	case SortTitle:
		return titleColumn
	case SortVoteCount:
		return "vote_count"
	default:
		return "popularity"
	}
}

func sortDirection(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}
