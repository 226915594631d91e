package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestListQueryFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/media?search=dune&original_language=ja&min_votes=250&min_rating=6.5&order=asc&sort_by=rating", nil)

	q := listQueryFromRequest(r)
	if q.Search != "dune" {
		t.Fatalf("search not mapped: %q", q.Search)
	}
	if q.OriginalLanguage != "ja" {
		t.Fatalf("original_language not mapped: %q", q.OriginalLanguage)
	}
	if q.MinVotes != 250 {
		t.Fatalf("min_votes not mapped: %d", q.MinVotes)
	}
	if q.MinRating != 6.5 {
		t.Fatalf("min_rating not mapped: %v", q.MinRating)
	}
	if q.SortBy != "rating" || q.SortOrder != "asc" {
		t.Fatalf("sort params not mapped: %q %q", q.SortBy, q.SortOrder)
	}
}

func TestListQueryOrderAlias(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/media?sort_order=desc", nil)
	if q := listQueryFromRequest(r); q.SortOrder != "desc" {
		t.Fatalf("sort_order alias not honored: %q", q.SortOrder)
	}

	// order wins when both are sent.
	r = httptest.NewRequest("GET", "/api/media?order=asc&sort_order=desc", nil)
	if q := listQueryFromRequest(r); q.SortOrder != "asc" {
		t.Fatalf("order should win over sort_order: %q", q.SortOrder)
	}
}
