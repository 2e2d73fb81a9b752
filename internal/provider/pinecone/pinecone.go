// Package pinecone is a client for the Pinecone REST API: index
// management on the control plane, upserts and similarity queries on the
// per-index data plane.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ragworks.io/askbridge/internal/core"
)

const (
	defaultControlPlaneURL = "https://api.pinecone.io"
	apiVersion             = "2024-07"

	readinessPollInterval = time.Second
	readinessTimeout      = 60 * time.Second
)

type Client struct {
	apiKey     string
	indexName  string
	cloud      string
	region     string
	controlURL string
	dataURL    string // resolved from the index host by EnsureIndex
	poll       time.Duration
	http       *http.Client
}

func NewClient(apiKey, indexName, cloud, region string) *Client {
	return &Client{
		apiKey:     apiKey,
		indexName:  indexName,
		cloud:      cloud,
		region:     region,
		controlURL: defaultControlPlaneURL,
		poll:       readinessPollInterval,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

type indexModel struct {
	Name   string `json:"name"`
	Host   string `json:"host"`
	Status struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type indexList struct {
	Indexes []indexModel `json:"indexes"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

// EnsureIndex makes sure the serverless index exists and is ready to
// serve, creating it with a cosine metric when absent. The index host is
// resolved here; Upsert and Query refuse to run before it.
func (c *Client) EnsureIndex(ctx context.Context, dimension int) error {
	var list indexList
	if err := c.do(ctx, http.MethodGet, c.controlURL+"/indexes", nil, &list); err != nil {
		return fmt.Errorf("listing indexes: %w", err)
	}

	var idx *indexModel
	for i := range list.Indexes {
		if list.Indexes[i].Name == c.indexName {
			idx = &list.Indexes[i]
			break
		}
	}

	if idx == nil {
		payload := createIndexRequest{
			Name:      c.indexName,
			Dimension: dimension,
			Metric:    "cosine",
			Spec:      indexSpec{Serverless: serverlessSpec{Cloud: c.cloud, Region: c.region}},
		}
		var created indexModel
		if err := c.do(ctx, http.MethodPost, c.controlURL+"/indexes", payload, &created); err != nil {
			return fmt.Errorf("creating index %q: %w", c.indexName, err)
		}
		log.Printf("Created Pinecone index %q (dimension %d, cloud %s, region %s)", c.indexName, dimension, c.cloud, c.region)
		idx = &created
	}

	idx, err := c.waitUntilReady(ctx, idx)
	if err != nil {
		return err
	}

	c.dataURL = hostURL(idx.Host)
	return nil
}

// waitUntilReady polls the describe endpoint until the index reports
// ready. Newly created serverless indexes take a few seconds to come up.
func (c *Client) waitUntilReady(ctx context.Context, idx *indexModel) (*indexModel, error) {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for !idx.Status.Ready {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for index %q to become ready", c.indexName)
		case <-ticker.C:
		}

		var described indexModel
		if err := c.do(ctx, http.MethodGet, c.controlURL+"/indexes/"+c.indexName, nil, &described); err != nil {
			return nil, fmt.Errorf("describing index %q: %w", c.indexName, err)
		}
		idx = &described
	}
	return idx, nil
}

type vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors []vector `json:"vectors"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

func (c *Client) Upsert(ctx context.Context, rec core.VectorRecord) error {
	if c.dataURL == "" {
		return errors.New("pinecone index host not resolved, EnsureIndex must run first")
	}

	payload := upsertRequest{
		Vectors: []vector{{
			ID:       rec.ID,
			Values:   rec.Values,
			Metadata: map[string]string{"text": rec.Text},
		}},
	}
	var out upsertResponse
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/vectors/upsert", payload, &out); err != nil {
		return fmt.Errorf("upserting vector %q: %w", rec.ID, err)
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float32           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

func (c *Client) Query(ctx context.Context, vec []float32, topK int) ([]core.Match, error) {
	if c.dataURL == "" {
		return nil, errors.New("pinecone index host not resolved, EnsureIndex must run first")
	}

	payload := queryRequest{Vector: vec, TopK: topK, IncludeMetadata: true}
	var out queryResponse
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/query", payload, &out); err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]core.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, core.Match{ID: m.ID, Score: m.Score, Text: m.Metadata["text"]})
	}
	return matches, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	if c.apiKey == "" {
		return errors.New("missing Pinecone API key")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// hostURL normalizes the host reported by the control plane, which comes
// back without a scheme.
func hostURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}
