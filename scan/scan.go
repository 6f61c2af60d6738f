// Package scan reads the handwritten pages of a credit notebook into
// candidate transactions.
package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

var (
	// ErrMissingKey means no API key is configured for the scanning service.
	ErrMissingKey = errors.New("scanner API key is missing")
	// ErrInvalidKey means the scanning service rejected the API key.
	ErrInvalidKey = errors.New("scanner API key is not valid")
	// ErrScanFailed wraps any other failure to read a page.
	ErrScanFailed = errors.New("could not read the page, try again with a clearer photo")
)

// Scanner turns the photo of a notebook page into entries.
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) ([]fiado.Entry, error)
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const prompt = `
Analyse this picture of a shop's credit notebook (cash or "fiado" control).
Extract the items written on the handwritten lines.

Usually each line holds:
  - a date (day/month or only the day). Assume the current year (%d) and month when missing.
  - a description of the product (for instance "Ring", "Earring", "Set").
  - a monetary value.

Tell whether each line is a SALE (goods leaving, the customer owes more) or a
PAYMENT (money received). When the page has separate columns for incoming and
outgoing values, use them; the right hand column with values usually holds
the sales.

Convert every date to ISO 8601: YYYY-MM-DD.
Return ONLY a JSON array.
`

// responseSchema constrains the model's answer to a list of entries.
var responseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":        {Type: genai.TypeString, Description: "Transaction date as YYYY-MM-DD"},
			"description": {Type: genai.TypeString, Description: "Description of the item"},
			"value":       {Type: genai.TypeNumber, Description: "Numeric value, for instance 150.00"},
			"type":        {Type: genai.TypeString, Enum: []string{"sale", "payment"}, Description: "sale for a debt, payment for money received"},
		},
		Required: []string{"date", "description", "value", "type"},
	},
}

// Gemini is a Scanner backed by Google's Gemini models.
type Gemini struct {
	APIKey string
	Model  string           // defaults to DefaultModel
	Now    func() time.Time // defaults to time.Now, gives the current year to the model
}

// Scan sends the image to Gemini and decodes the entries it found.
func (g *Gemini) Scan(ctx context.Context, image []byte, mimeType string) ([]fiado.Entry, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return nil, ErrMissingKey
	}
	image, mimeType = stripDataURL(image, mimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	model := g.Model
	if model == "" {
		model = DefaultModel
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, classify(err)
	}
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		{Text: fmt.Sprintf(prompt, now().Year())},
	}, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, classify(err)
	}
	entries, err := Decode(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	log.Debug().Str("model", model).Int("entries", len(entries)).Msg("page scanned")
	return entries, nil
}

// Decode reads the JSON array answered by the model. An empty answer has no entries.
func Decode(text string) ([]fiado.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var items []struct {
		Date        string       `json:"date"`
		Description string       `json:"description"`
		Value       fiado.Amount `json:"value"`
		Type        string       `json:"type"`
	}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("unexpected answer %q: %w", text, err)
	}
	entries := make([]fiado.Entry, 0, len(items))
	for i, item := range items {
		day, err := date.Parse(item.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		typ := fiado.Payment
		if strings.EqualFold(item.Type, "sale") {
			typ = fiado.Sale
		}
		entries = append(entries, fiado.Entry{Date: day, Description: item.Description, Value: item.Value, Type: typ})
	}
	return entries, nil
}

var dataURL = regexp.MustCompile(`^data:(image/(?:png|jpeg|jpg|webp));base64,`)

// stripDataURL decodes an image given as a data URL.
func stripDataURL(image []byte, mimeType string) ([]byte, string) {
	m := dataURL.FindSubmatch(image)
	if m == nil {
		return image, mimeType
	}
	decoded, err := base64.StdEncoding.DecodeString(string(image[len(m[0]):]))
	if err != nil {
		return image, mimeType
	}
	return decoded, string(m[1])
}

// classify maps service errors to the scanner's error kinds.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if strings.Contains(err.Error(), "API key not valid") {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return fmt.Errorf("%w: %w", ErrScanFailed, err)
}
