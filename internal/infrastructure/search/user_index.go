package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "name":           {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "email":          {"type": "keyword"},
      "role":           {"type": "keyword"},
      "phoneNumber":    {"type": "keyword", "index": false},
      "address":        {"type": "text", "index": false},
      "profilePicture": {"type": "keyword", "index": false},
      "createdAt":      {"type": "date"},
      "updatedAt":      {"type": "date"}
    }
  }
}`

var sortFields = map[string]string{
	repository.SortCreatedAt: "createdAt",
	repository.SortUpdatedAt: "updatedAt",
	repository.SortName:      "name.keyword",
	repository.SortEmail:     "email",
	repository.SortRole:      "role",
}

// UserIndex mirrors the safe user view into Elasticsearch and serves name search.
// Password hashes are never indexed.
type UserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, Index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(indexMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

func (x *UserIndex) Put(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(u.View())
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := esapi.IndexRequest{Index: x.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "wait_for"}
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *UserIndex) Remove(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.DeleteRequest{Index: x.Index, DocumentID: id, Refresh: "wait_for"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs the listing query against the index: name match, optional role
// filter, sorting and offset paging. Results carry no password hash.
func (x *UserIndex) Search(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error) {
	filters := []any{}
	if f.Role != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"role": string(f.Role)}})
	}
	must := []any{}
	if f.Search != "" {
		must = append(must, map[string]any{
			"wildcard": map[string]any{
				"name.keyword": map[string]any{
					"value":            "*" + escapeWildcard(f.Search) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	field, ok := sortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	order := "asc"
	if f.Desc {
		order = "desc"
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must, "filter": filters},
		},
		"sort":             []any{map[string]any{field: map[string]any{"order": order}}, map[string]any{"id": map[string]any{"order": order}}},
		"from":             f.Offset,
		"size":             f.Limit,
		"track_total_hits": true,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, 0, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source entity.View `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		v := h.Source
		out = append(out, entity.User{
			ID:             v.ID,
			Name:           v.Name,
			Email:          v.Email,
			Role:           v.Role,
			PhoneNumber:    v.PhoneNumber,
			Address:        v.Address,
			ProfilePicture: v.ProfilePicture,
			CreatedAt:      v.CreatedAt,
			UpdatedAt:      v.UpdatedAt,
		})
	}
	return out, parsed.Hits.Total.Value, nil
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}
