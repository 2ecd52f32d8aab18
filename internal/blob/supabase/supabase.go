// Package supabase talks to the Supabase Storage REST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/storage/v1",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Storage(method+" "+url, err)
	}

	return resp, nil
}

type apiError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// failure reads an error body. The API reports missing objects either as 404
// or as 400 carrying statusCode "404".
func failure(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var e apiError
	_ = json.Unmarshal(body, &e)

	if resp.StatusCode == http.StatusNotFound || e.StatusCode == "404" || e.Error == "not_found" {
		return fmt.Errorf("%s: %w", op, blob.ErrNotFound)
	}

	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	return apperr.Storage(op, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
}

func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (blob.Object, error) {
	p, err := blob.CleanPath(path)
	if err != nil {
		return blob.Object{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.objectURL(bucket, p), bytes.NewReader(data), contentType,
		map[string]string{"x-upsert": "true", "cache-control": "3600"})
	if err != nil {
		return blob.Object{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return blob.Object{}, failure("uploading "+bucket+"/"+p, resp)
	}

	return blob.Object{Bucket: bucket, Path: p, URL: c.baseURL + "/object/authenticated/" + bucket + "/" + p}, nil
}

func (c *Client) objectURL(bucket, path string) string {
	return c.baseURL + "/object/" + bucket + "/" + path
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

func (c *Client) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	body, err := json.Marshal(signRequest{ExpiresIn: int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("encoding sign request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/object/sign/"+bucket+"/"+path, bytes.NewReader(body), "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", failure("signing "+bucket+"/"+path, resp)
	}

	var out signResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Storage("decoding sign response", err)
	}

	return c.baseURL + out.SignedURL, nil
}

type deleteRequest struct {
	Prefixes []string `json:"prefixes"`
}

func (c *Client) Delete(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(deleteRequest{Prefixes: paths})
	if err != nil {
		return fmt.Errorf("encoding delete request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/object/"+bucket, bytes.NewReader(body), "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return failure("deleting from "+bucket, resp)
	}

	return nil
}

func (c *Client) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/object/authenticated/"+bucket+"/"+path, nil, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, failure("downloading "+bucket+"/"+path, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Storage("reading object body", err)
	}

	return data, nil
}
