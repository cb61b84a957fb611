package result

import "testing"

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int64
		limit     int64
		total     int64
		wantPage  int64
		wantSize  int64
		wantPages int64
	}{
		{"first page", 1, 10, 25, 1, 10, 3},
		{"exact fit", 2, 5, 10, 2, 5, 2},
		{"page defaults to 1", 0, 10, 5, 1, 10, 1},
		{"no limit takes total", 1, 0, 7, 1, 7, 1},
		{"empty collection", 1, 0, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]string{"x"}, tt.page, tt.limit, tt.total)
			if p.PageNum != tt.wantPage {
				t.Errorf("PageNum = %d, want %d", p.PageNum, tt.wantPage)
			}
			if p.PageSize != tt.wantSize {
				t.Errorf("PageSize = %d, want %d", p.PageSize, tt.wantSize)
			}
			if p.TotalItems != tt.total {
				t.Errorf("TotalItems = %d, want %d", p.TotalItems, tt.total)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestNewPageNilData(t *testing.T) {
	p := NewPage[string](nil, 1, 10, 0)
	if p.Data == nil {
		t.Error("Data should serialize as [] rather than null")
	}
	if len(p.Data) != 0 {
		t.Errorf("Data length = %d, want 0", len(p.Data))
	}
}
