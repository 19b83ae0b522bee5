package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"soundcrate/internal/models"
)

// loadImagesByParent fetches the cover variants for a batch of parents
// through the given join table, one query for the whole batch.
func (s *Store) loadImagesByParent(ctx context.Context, joinTable, parentColumn string, parentIDs []int64) (map[int64][]models.Image, error) {
	if len(parentIDs) == 0 {
		return map[int64][]models.Image{}, nil
	}

	query := fmt.Sprintf(`
		SELECT j.%s, i.id, i.url, i.size
		FROM %s j
		JOIN images i ON i.id = j.image_id
		WHERE j.%s = ANY($1)
		ORDER BY i.id ASC
	`, parentColumn, joinTable, parentColumn)

	rows, err := s.db.QueryContext(ctx, query, pq.Array(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", joinTable, err)
	}
	defer rows.Close()

	images := make(map[int64][]models.Image)
	for rows.Next() {
		var (
			parentID int64
			img      models.Image
		)
		if err := rows.Scan(&parentID, &img.ID, &img.URL, &img.Size); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images[parentID] = append(images[parentID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return images, nil
}
