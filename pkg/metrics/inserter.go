package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// Inserter delivers metric documents to the search backend.
type Inserter interface {
	// EnsureTemplates creates the index templates if they are absent.
	EnsureTemplates(ctx context.Context) error

	// BulkInsert delivers documents grouped by target index, one bulk
	// call per index.
	BulkInsert(ctx context.Context, docs []Document) error
}

// ESInserter talks to an Elasticsearch-compatible backend.
type ESInserter struct {
	client *elasticsearch.Client
}

func NewESInserter(endpoint string) (*ESInserter, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{endpoint},
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics backend client: %w", err)
	}
	return &ESInserter{client: client}, nil
}

func (e *ESInserter) EnsureTemplates(ctx context.Context) error {
	for _, tpl := range Templates() {
		exists, err := e.templateExists(ctx, tpl.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := e.putTemplate(ctx, tpl); err != nil {
			return err
		}
	}
	return nil
}

func (e *ESInserter) templateExists(ctx context.Context, name string) (bool, error) {
	req := esapi.IndicesExistsTemplateRequest{Name: []string{name}}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return false, fmt.Errorf("check index template %s: %w", name, err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

func (e *ESInserter) putTemplate(ctx context.Context, tpl IndexTemplate) error {
	req := esapi.IndicesPutTemplateRequest{
		Name: tpl.Name,
		Body: strings.NewReader(tpl.Body),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("create index template %s: %w", tpl.Name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index template %s: %s", tpl.Name, res.Status())
	}
	return nil
}

func (e *ESInserter) BulkInsert(ctx context.Context, docs []Document) error {
	byIndex := make(map[string][]Document)
	for _, doc := range docs {
		byIndex[doc.IndexName()] = append(byIndex[doc.IndexName()], doc)
	}

	for index, group := range byIndex {
		body, err := bulkBody(group)
		if err != nil {
			return err
		}
		req := esapi.BulkRequest{Index: index, Body: body}
		res, err := req.Do(ctx, e.client)
		if err != nil {
			return fmt.Errorf("bulk insert into %s: %w", index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("bulk insert into %s: %s", index, res.Status())
		}
	}
	return nil
}

// bulkBody renders the NDJSON action/document pairs for one index.
// Every document gets a fresh random id.
func bulkBody(docs []Document) (*bytes.Reader, error) {
	var buf bytes.Buffer
	for _, doc := range docs {
		action := fmt.Sprintf(`{"index":{"_id":%q}}`, uuid.NewString())
		buf.WriteString(action)
		buf.WriteByte('\n')

		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal metric document: %w", err)
		}
		buf.Write(payload)
		buf.WriteByte('\n')
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// NopInserter is used when no backend endpoint is configured.
type NopInserter struct{}

func (NopInserter) EnsureTemplates(ctx context.Context) error { return nil }

func (NopInserter) BulkInsert(ctx context.Context, docs []Document) error { return nil }
