package scan

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	text := `[
	  {"date":"2024-03-05","description":"Anel","value":150.5,"type":"sale"},
	  {"date":"2024-03-06","description":"Pix","value":"50","type":"payment"},
	  {"date":"2024-03-07","description":"Brinco","value":20,"type":"SALE"},
	  {"date":"2024-03-08","description":"??","value":10,"type":"other"}
	]`
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	want := []fiado.Entry{
		{Date: date.New(2024, 3, 5), Description: "Anel", Value: fiado.A(150.5), Type: fiado.Sale},
		{Date: date.New(2024, 3, 6), Description: "Pix", Value: fiado.A(50), Type: fiado.Payment},
		{Date: date.New(2024, 3, 7), Description: "Brinco", Value: fiado.A(20), Type: fiado.Sale},
		{Date: date.New(2024, 3, 8), Description: "??", Value: fiado.A(10), Type: fiado.Payment},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	got, err := Decode("  ")
	if err != nil || len(got) != 0 {
		t.Errorf("Decode(blank) = %v, %v, want no entries", got, err)
	}
	if _, err := Decode(`{"not":"an array"}`); err == nil {
		t.Error("Decode(object) succeeded, want an error")
	}
	if _, err := Decode(`[{"date":"someday","description":"x","value":1,"type":"sale"}]`); err == nil {
		t.Error("Decode(bad date) succeeded, want an error")
	}
}

func TestStripDataURL(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name     string
		image    []byte
		mimeType string
		want     []byte
		wantType string
	}{
		{"data url", []byte(url), "", raw, "image/png"},
		{"plain bytes", raw, "image/jpeg", raw, "image/jpeg"},
		{"broken base64", []byte("data:image/png;base64,!!!"), "x", []byte("data:image/png;base64,!!!"), "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotType := stripDataURL(tt.image, tt.mimeType)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stripDataURL() image mismatch (-want +got):\n%s", diff)
			}
			if gotType != tt.wantType {
				t.Errorf("stripDataURL() type = %q, want %q", gotType, tt.wantType)
			}
		})
	}
}

func TestMissingKey(t *testing.T) {
	g := &Gemini{}
	if _, err := g.Scan(context.Background(), []byte("img"), "image/png"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Scan() without key error = %v, want ErrMissingKey", err)
	}
}

func TestClassify(t *testing.T) {
	if err := classify(errors.New("Error 400, Message: API key not valid. Please pass a valid API key.")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("classify(invalid key) = %v, want ErrInvalidKey", err)
	}
	if err := classify(errors.New("deadline exceeded")); !errors.Is(err, ErrScanFailed) {
		t.Errorf("classify(other) = %v, want ErrScanFailed", err)
	}
}
