package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/painfulChen/offercome-sub000/config"
	"github.com/painfulChen/offercome-sub000/models"
)

// ContentExtractor turns raw file bytes into plain text. Backed by the
// external model API in production; failure propagates to the ingestion
// caller and no partial document is created.
type ContentExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte, docType models.DocumentType) (string, error)
}

type HTTPExtractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPExtractor(cfg *config.Config) *HTTPExtractor {
	return &HTTPExtractor{
		client:  &http.Client{Timeout: cfg.ExtractTimeout},
		baseURL: cfg.ExtractAPIBase,
		apiKey:  cfg.ExtractAPIKey,
	}
}

func extractionPrompt(docType models.DocumentType) string {
	switch docType {
	case models.DocTypeImage:
		return "Extract all readable text from this image, preserving structure."
	case models.DocTypeFeishuSheet:
		return "Extract the spreadsheet content as plain text, one row per line."
	default:
		return "Extract the document content as plain text."
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, fileName string, data []byte, docType models.DocumentType) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("doc_type", string(docType)); err != nil {
		return "", err
	}
	if err := writer.WriteField("prompt", extractionPrompt(docType)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/extract", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Printf("Error closing response body, %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("extraction API returned %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode extraction response: %w", err)
	}
	if parsed.Text == "" {
		return "", fmt.Errorf("extraction API returned empty text for %s", fileName)
	}
	return parsed.Text, nil
}
