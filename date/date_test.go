package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: " 2025-12-31 ", want: New(2025, time.December, 31)},
		{in: "2025-05-10T13:45:00.000Z", want: New(2025, time.May, 10)},
		{in: "10/05/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"2025-03-01", "2025-02-28", 1},
		{"2024-03-01", "2024-02-28", 2}, // leap year
		{"2025-01-01", "2025-01-01", 0},
		{"2025-01-01", "2025-03-02", -60},
		{"2026-01-01", "2025-01-01", 365},
	}
	for _, tc := range testCases {
		if got := MustParse(tc.a).Sub(MustParse(tc.b)); got != tc.want {
			t.Errorf("%s.Sub(%s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAddNormalizes(t *testing.T) {
	if got, want := MustParse("2025-01-31").Add(1), MustParse("2025-02-01"); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
	if got, want := MustParse("2025-03-01").Add(-1), MustParse("2025-02-28"); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
}

func TestJSON(t *testing.T) {
	var v struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"2025-7-1","b":"","c":null}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.A != New(2025, time.July, 1) || !v.B.IsZero() || !v.C.IsZero() {
		t.Errorf("unexpected dates %v %v %v", v.A, v.B, v.C)
	}
	got, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"a":"2025-07-01","b":null,"c":null}`; string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestRange(t *testing.T) {
	r := Range{From: MustParse("2025-01-01"), To: MustParse("2025-01-31")}
	for day, want := range map[string]bool{
		"2024-12-31": false,
		"2025-01-01": true,
		"2025-01-31": true,
		"2025-02-01": false,
	} {
		if got := r.Contains(MustParse(day)); got != want {
			t.Errorf("Contains(%s) = %v, want %v", day, got, want)
		}
	}
	if !(Range{}).Contains(MustParse("1999-01-01")) {
		t.Errorf("open range must contain any date")
	}
}
