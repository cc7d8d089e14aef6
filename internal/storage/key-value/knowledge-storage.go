package key_value

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type knowledgeItemInternal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeStorage keeps one redis hash per user, item id to JSON item.
type KnowledgeStorage struct {
	rdb *redis.Client
}

func NewKnowledgeStorage(rdb *redis.Client) *KnowledgeStorage {
	return &KnowledgeStorage{
		rdb: rdb,
	}
}

func (k *KnowledgeStorage) AddKnowledge(
	ctx context.Context,
	userID uuid.UUID,
	item model.KnowledgeItem,
) (model.KnowledgeItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	itemJSON, err := json.Marshal(
		knowledgeItemInternal{
			ID:        item.ID.String(),
			Title:     item.Title,
			Content:   item.Content,
			UpdatedAt: item.UpdatedAt,
		},
	)
	if err != nil {
		return model.KnowledgeItem{}, fmt.Errorf("failed to marshal knowledge item: %w", err)
	}
	if err = k.rdb.HSet(ctx, getKnowledgeKey(userID), item.ID.String(), itemJSON).Err(); err != nil {
		return model.KnowledgeItem{}, fmt.Errorf("failed to save knowledge item %s: %w", item.ID, err)
	}
	return item, nil
}

// ListKnowledge returns the user's items ordered by last update.
func (k *KnowledgeStorage) ListKnowledge(ctx context.Context, userID uuid.UUID) ([]model.KnowledgeItem, error) {
	raw, err := k.rdb.HGetAll(ctx, getKnowledgeKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge of user %s: %w", userID, err)
	}
	items := make([]model.KnowledgeItem, 0, len(raw))
	for field, value := range raw {
		var itemInt knowledgeItemInternal
		if err = json.Unmarshal([]byte(value), &itemInt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal knowledge item %s: %w", field, err)
		}
		itemID, err := uuid.Parse(itemInt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse knowledge item id %s: %w", itemInt.ID, err)
		}
		items = append(
			items, model.KnowledgeItem{
				ID:        itemID,
				Title:     itemInt.Title,
				Content:   itemInt.Content,
				UpdatedAt: itemInt.UpdatedAt,
			},
		)
	}
	slices.SortFunc(
		items, func(x, y model.KnowledgeItem) int {
			return x.UpdatedAt.Compare(y.UpdatedAt)
		},
	)
	return items, nil
}

func (k *KnowledgeStorage) DeleteKnowledge(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	removed, err := k.rdb.HDel(ctx, getKnowledgeKey(userID), itemID.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete knowledge item %s: %w", itemID, err)
	}
	if removed == 0 {
		return model.ErrKnowledgeItemDoesNotExist
	}
	return nil
}

func (k *KnowledgeStorage) ClearKnowledge(ctx context.Context, userID uuid.UUID) error {
	if err := k.rdb.Del(ctx, getKnowledgeKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear knowledge of user %s: %w", userID, err)
	}
	return nil
}

func getKnowledgeKey(userID uuid.UUID) string {
	return fmt.Sprintf("knowledge_%s", userID)
}
