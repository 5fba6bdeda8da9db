package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eslsoft/leitbox/internal/entity"
)

type catalogRepository struct {
	db dbtx
}

const listItemsSQL = `
SELECT id, list_id, term, part_of_speech, definitions, sample_sentences
FROM vocab_items
WHERE list_id = $1
ORDER BY position, id`

func (r *catalogRepository) ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, listItemsSQL, listID)
	if err != nil {
		return nil, fmt.Errorf("list vocab items: %w", err)
	}
	defer rows.Close()

	var items []entity.VocabItem
	for rows.Next() {
		var (
			item     entity.VocabItem
			rawDefs  []byte
			sentences []string
		)
		if err := rows.Scan(&item.ID, &item.ListID, &item.Term, &item.PartOfSpeech, &rawDefs, &sentences); err != nil {
			return nil, fmt.Errorf("scan vocab item: %w", err)
		}
		if len(rawDefs) > 0 {
			defs := make(map[string]string)
			if err := json.Unmarshal(rawDefs, &defs); err != nil {
				return nil, fmt.Errorf("decode definitions for item %d: %w", item.ID, err)
			}
			item.Definitions = make(map[entity.Language]string, len(defs))
			for lang, text := range defs {
				item.Definitions[entity.Language(lang)] = text
			}
		}
		item.SampleSentences = sentences
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vocab items: %w", err)
	}
	if len(items) == 0 {
		if err := r.listExists(ctx, listID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *catalogRepository) listExists(ctx context.Context, listID int64) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vocab_lists WHERE id = $1)`, listID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return entity.ErrListNotFound
	}
	return nil
}
