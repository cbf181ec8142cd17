package catalog

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"199.50", 199.50, false},
		{"199,50", 199.50, false},
		{" 10 ", 10, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"+Inf", 0, true},
		{"-Inf", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr != (err != nil) {
			t.Fatalf("ParsePrice(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseStock(t *testing.T) {
	if v, err := ParseStock("10"); err != nil || v != 10 {
		t.Fatalf("ParseStock(10) = %v, %v", v, err)
	}
	for _, bad := range []string{"-1", "1.5", "many", ""} {
		if _, err := ParseStock(bad); err == nil {
			t.Fatalf("ParseStock(%q) expected error", bad)
		}
	}
}

func TestDecodeRow(t *testing.T) {
	p, ok := decodeRow([]interface{}{"SKU1", "Lipstick", "Makeup", "199,50", "10", "Matte red", "http://img", "yes"})
	if !ok {
		t.Fatal("expected row to decode")
	}
	if p.ID != "SKU1" || p.Price != 199.50 || p.Stock != 10 || !p.Active {
		t.Fatalf("decoded product = %+v", p)
	}

	// Numeric cells arrive as float64 from the Sheets API.
	p, ok = decodeRow([]interface{}{"SKU2", "Soap", "Bath", 50.0, 3.0, "", "", ""})
	if !ok || p.Price != 50 || p.Stock != 3 || !p.Active {
		t.Fatalf("numeric row decoded = %+v ok=%v", p, ok)
	}
}

func TestDecodeRowMalformed(t *testing.T) {
	malformed := [][]interface{}{
		{},                            // empty
		{""},                          // blank id
		{"SKU3", "X", "Y", "cheap"},   // unparseable price
		{"SKU4", "X", "Y", "1", "no"}, // unparseable stock
	}
	for i, row := range malformed {
		if _, ok := decodeRow(row); ok {
			t.Fatalf("row %d should be skipped", i)
		}
	}
}

func TestParseActive(t *testing.T) {
	for _, yes := range []string{"yes", "Y", "TRUE", "1", ""} {
		if !ParseActive(yes) {
			t.Fatalf("ParseActive(%q) = false", yes)
		}
	}
	for _, no := range []string{"no", "0", "false", "off"} {
		if ParseActive(no) {
			t.Fatalf("ParseActive(%q) = true", no)
		}
	}
}

func TestIsHeaderRow(t *testing.T) {
	if !isHeaderRow([]interface{}{"id", "name"}) {
		t.Fatal("header row not detected")
	}
	if isHeaderRow([]interface{}{"SKU1", "Lipstick"}) {
		t.Fatal("data row mistaken for header")
	}
}
