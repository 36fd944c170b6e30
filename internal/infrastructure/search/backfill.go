package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

const backfillPage = 500

// Backfill bulk-indexes every user in repo, so an index enabled after users
// already exist still answers searches completely. It returns the number of
// documents indexed.
func (x *UserIndex) Backfill(ctx context.Context, repo repository.UserRepository) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:      x.Index,
		Client:     x.ES,
		NumWorkers: 2,
	})
	if err != nil {
		return 0, err
	}

	f := repository.ListFilter{SortBy: repository.SortCreatedAt, Limit: backfillPage}
	for {
		users, _, err := repo.List(ctx, f)
		if err != nil {
			_ = bi.Close(ctx)
			return 0, err
		}
		for i := range users {
			b, err := json.Marshal(users[i].View())
			if err != nil {
				_ = bi.Close(ctx)
				return 0, err
			}
			if err := bi.Add(ctx, esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: users[i].ID,
				Body:       bytes.NewReader(b),
			}); err != nil {
				_ = bi.Close(ctx)
				return 0, err
			}
		}
		if len(users) < backfillPage {
			break
		}
		f.Offset += backfillPage
	}

	if err := bi.Close(ctx); err != nil {
		return 0, err
	}
	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumIndexed), fmt.Errorf("es backfill: %d documents failed", stats.NumFailed)
	}
	return int(stats.NumIndexed), nil
}
