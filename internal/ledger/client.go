package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"sitebooks/pkg/utils"
)

// JournalLine is one job/cost-code split of a journal entry.
type JournalLine struct {
	JobID      int64           `json:"job_id"`
	CostCodeID int64           `json:"cost_code_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// JournalEntry is the payload submitted to the general ledger. The ledger
// owns its own validation; this service only ships the coded fields over.
type JournalEntry struct {
	Reference      string          `json:"reference"`
	EntryDate      string          `json:"entry_date"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	VendorID       int64           `json:"vendor_id,omitempty"`
	JobID          int64           `json:"job_id,omitempty"`
	CostCodeID     int64           `json:"cost_code_id,omitempty"`
	ChartAccountID int64           `json:"chart_account_id,omitempty"`
	Lines          []JournalLine   `json:"lines,omitempty"`
}

// Poster submits one journal entry and returns its ledger identifier.
type Poster interface {
	PostEntry(ctx context.Context, entry JournalEntry) (int64, error)
}

type GLClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGLClient() (*GLClient, error) {
	apiKey := os.Getenv("GL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GL_API_KEY environment variable is not set")
	}
	baseURL := os.Getenv("GL_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("GL_BASE_URL environment variable is not set")
	}
	return &GLClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type glResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID int64 `json:"id"`
	} `json:"data"`
}

func (g *GLClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*glResponse, error) {
	endpointURL := fmt.Sprintf("%s%s", g.BaseURL, endpoint)
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpointURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+g.APIKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var res glResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !res.Status {
		return nil, fmt.Errorf("ledger error: %s", res.Message)
	}

	return &res, nil
}

func (g *GLClient) PostEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	if entry.Reference == "" {
		entry.Reference = GenerateReference("je")
	}
	if entry.EntryDate == "" {
		return 0, fmt.Errorf("missing required field: entry_date")
	}
	res, err := g.doRequest(ctx, "POST", "/journal-entries", entry)
	if err != nil {
		return 0, err
	}
	if res.Data.ID == 0 {
		return 0, fmt.Errorf("ledger returned no journal entry id")
	}
	return res.Data.ID, nil
}

func GenerateReference(prefix string) string {
	return fmt.Sprintf("%s%s-%s", prefix, time.Now().Format("20060102150405"), utils.GenerateRandomString(6))
}
