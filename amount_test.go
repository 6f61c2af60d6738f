package fiado

import (
	"encoding/json"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "150", want: "150"},
		{in: " 99.95 ", want: "99.95"},
		{in: "12,50", want: "12.5"},
		{in: "-3", want: "-3"},
		{in: "1,000.50", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err == nil && !got.Decimal().Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got.Decimal(), tc.want)
			}
		})
	}
}

func TestAmountJSON(t *testing.T) {
	tests := []struct {
		in        string
		malformed bool
		value     string
		out       string
	}{
		{in: `150`, value: "150", out: `150`},
		{in: `99.95`, value: "99.95", out: `99.95`},
		{in: `"150.50"`, value: "150.5", out: `150.5`},
		{in: `"12,50"`, value: "12.5", out: `12.5`},
		{in: `"abc"`, malformed: true, value: "0", out: `"abc"`},
		{in: `true`, malformed: true, value: "0", out: `true`},
		{in: `{"v":1}`, malformed: true, value: "0", out: `{"v":1}`},
		{in: `null`, malformed: true, value: "0", out: `null`},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tc.in), &a); err != nil {
				t.Fatalf("Unmarshal(%s) = %v", tc.in, err)
			}
			if a.IsMalformed() != tc.malformed {
				t.Errorf("IsMalformed() = %v, want %v", a.IsMalformed(), tc.malformed)
			}
			if !a.Decimal().Equal(decimal.RequireFromString(tc.value)) {
				t.Errorf("Decimal() = %s, want %s", a.Decimal(), tc.value)
			}
			out, err := json.Marshal(a)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tc.out {
				t.Errorf("Marshal() = %s, want %s", out, tc.out)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"0.005", "$0.01"},
		{"-10", "-$10.00"},
	}
	for _, tc := range tests {
		if got := FormatMoney(decimal.RequireFromString(tc.value), money.USD); got != tc.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
