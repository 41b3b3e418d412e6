package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const DefaultModelName = "gemini-2.5-flash"

var scanPrompt = "Analyze this receipt image and extract the following information in JSON format:\n" +
	"- Type of the transaction (one of: INCOME, EXPENSE)\n" +
	"- Total amount (just the number)\n" +
	"- Date (in ISO format)\n" +
	"- Description or items purchased (brief summary)\n" +
	"- Merchant/store name\n" +
	"- Suggested category (one of: " + strings.Join(Categories, ",") + ")\n\n" +
	"Only respond with valid JSON in this exact format:\n" +
	"{\"type\": \"string\", \"amount\": number, \"date\": \"ISO date string\", " +
	"\"description\": \"string\", \"merchantName\": \"string\", \"category\": \"string\"}\n\n" +
	"If it is not a receipt, return an empty object.\n" +
	"Do NOT wrap the response in code fences.\n"

// contentGenerator is the slice of the genai client the scanner uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiScanner implements Scanner with a Gemini model
type GeminiScanner struct {
	models contentGenerator
	model  string
}

// NewGeminiScanner creates a scanner using the Gemini API
func NewGeminiScanner(ctx context.Context, apiKey, model string) (*GeminiScanner, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiScanner{models: client.Models, model: model}, nil
}

// Scan sends the image to the model and parses its JSON answer
func (s *GeminiScanner) Scan(ctx context.Context, image []byte, mimeType string) (*Scan, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
				{Text: scanPrompt},
			},
		},
	}

	resp, err := s.models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response from model", ErrScanFailed)
	}
	return parseScan(raw)
}

type modelScan struct {
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	MerchantName string          `json:"merchantName"`
	Category     string          `json:"category"`
}

func parseScan(raw string) (*Scan, error) {
	var m modelScan
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &m); err != nil {
		return nil, fmt.Errorf("%w: unmarshal JSON: %v", ErrScanFailed, err)
	}

	scan := &Scan{
		Amount:       m.Amount.Abs(),
		Description:  strings.TrimSpace(m.Description),
		MerchantName: strings.TrimSpace(m.MerchantName),
	}

	if t := domain.TransactionType(strings.ToUpper(strings.TrimSpace(m.Type))); t.IsValid() {
		scan.Type = t
	} else if !m.Amount.IsZero() {
		scan.Type = domain.TransactionTypeExpense
	}

	category := strings.ToLower(strings.TrimSpace(m.Category))
	if slices.Contains(Categories, category) {
		scan.Category = category
	} else if category != "" {
		scan.Category = "other-expense"
	}

	if m.Date != "" {
		d, err := parseModelDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
		}
		scan.Date = &d
	}
	return scan, nil
}

func parseModelDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// cleanModelJSON strips Markdown fences and any text around the JSON object
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}
