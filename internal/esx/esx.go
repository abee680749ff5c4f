// Package esx provides optional Elasticsearch indexing and search over
// project records. When no ES address is configured the client is nil and
// callers fall back to the in-memory predicates.
package esx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/lo"

	"freelanceflow/internal/config"
	"freelanceflow/internal/project"
)

// Client is an alias for the Elasticsearch client.
type Client = es8.Client

// Index is the index holding project documents.
const Index = "projects"

func Open(cfg *config.Config) (*Client, func(), error) {
	if strings.TrimSpace(cfg.ES.Addrs) == "" {
		return nil, func() {}, nil
	}
	raw := strings.Split(cfg.ES.Addrs, ",")
	addrs := lo.FilterMap(raw, func(s string, _ int) (string, bool) {
		t := strings.TrimSpace(s)
		return t, t != ""
	})
	es, err := es8.NewClient(es8.Config{Addresses: addrs, Username: cfg.ES.Username, Password: cfg.ES.Password})
	if err != nil {
		return nil, func() {}, err
	}
	return es, func() {}, nil
}

// ProjectDoc is the indexed shape of a project.
type ProjectDoc struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Client        string  `json:"client"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Amount        float64 `json:"amount"`
	CreatedAt     string  `json:"created_at"`
}

// Doc converts a project to its indexed form.
func Doc(p project.Project) ProjectDoc {
	return ProjectDoc{
		ID:            p.ID,
		Name:          p.Name,
		Client:        p.Client,
		Status:        string(p.Status),
		PaymentStatus: string(p.PaymentStatus),
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// IndexProject upserts a project document.
func IndexProject(ctx context.Context, es *Client, p project.Project) error {
	if es == nil {
		return nil
	}
	b, _ := json.Marshal(Doc(p))
	res, err := es.Index(Index, bytes.NewReader(b), es.Index.WithDocumentID(p.ID), es.Index.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return fmtError(res)
	}
	return nil
}

// RemoveProject deletes a project document; a missing document is not an
// error.
func RemoveProject(ctx context.Context, es *Client, id string) error {
	if es == nil {
		return nil
	}
	res, err := es.Delete(Index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest && res.StatusCode != http.StatusNotFound {
		return fmtError(res)
	}
	return nil
}

// SearchProjects runs a multi-match over name and client.
func SearchProjects(ctx context.Context, es *Client, query string, from, size int) (map[string]any, error) {
	if es == nil {
		return map[string]any{"hits": []any{}}, nil
	}
	q := map[string]any{"query": map[string]any{"multi_match": map[string]any{"query": query, "fields": []string{"name^2", "client"}}}}
	b, _ := json.Marshal(q)
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(Index),
		es.Search.WithBody(bytes.NewReader(b)),
		es.Search.WithFrom(from),
		es.Search.WithSize(size),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmtError(res)
	}
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return out, nil
}

func fmtError(res *esapi.Response) error { return fmt.Errorf("es error: %s", res.String()) }
