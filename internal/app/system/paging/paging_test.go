package paging

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/cases", 1, DefaultLimit},
		{"explicit", "/cases?page=3&limit=25", 3, 25},
		{"negative page", "/cases?page=-2", 1, DefaultLimit},
		{"garbage", "/cases?page=abc&limit=xyz", 1, DefaultLimit},
		{"zero limit", "/cases?limit=0", 1, DefaultLimit},
		{"limit clamped", "/cases?limit=5000", 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(httptest.NewRequest("GET", tt.url, nil))
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Parse() = %+v, want page=%d limit=%d", p, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	if got := (Page{Page: 3, Limit: 20}).Skip(); got != 40 {
		t.Errorf("Skip() = %d, want 40", got)
	}
	if got := (Page{Page: 1, Limit: 20}).Skip(); got != 0 {
		t.Errorf("Skip() = %d, want 0", got)
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		page      Page
		total     int64
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", Page{1, 10}, 0, 0, false, false},
		{"exact", Page{1, 10}, 10, 1, false, false},
		{"partial last", Page{2, 10}, 25, 3, true, true},
		{"last page", Page{3, 10}, 25, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeta(tt.page, tt.total)
			if m.TotalPages != tt.wantPages || m.HasNext != tt.wantNext || m.HasPrev != tt.wantPrev {
				t.Errorf("NewMeta() = %+v", m)
			}
			if m.TotalItems != tt.total || m.ItemsPerPage != tt.page.Limit {
				t.Errorf("NewMeta() totals = %+v", m)
			}
		})
	}
}

func TestSort(t *testing.T) {
	allowed := map[string]string{"createdAt": "created_at", "priority": "priority"}

	got := Sort(httptest.NewRequest("GET", "/x?sortBy=priority&sortOrder=asc", nil), allowed, "created_at")
	want := bson.D{{Key: "priority", Value: 1}, {Key: "_id", Value: 1}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Sort() = %v, want %v", got, want)
	}

	got = Sort(httptest.NewRequest("GET", "/x?sortBy=password", nil), allowed, "created_at")
	if got[0].Key != "created_at" || got[0].Value != -1 {
		t.Errorf("Sort() with unknown field = %v, want created_at desc", got)
	}
}
