package in_memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type KnowledgeStorage struct {
	mu    sync.RWMutex
	items map[uuid.UUID][]model.KnowledgeItem
}

func NewKnowledgeStorage() *KnowledgeStorage {
	return &KnowledgeStorage{
		items: make(map[uuid.UUID][]model.KnowledgeItem),
	}
}

func (k *KnowledgeStorage) AddKnowledge(
	_ context.Context,
	userID uuid.UUID,
	item model.KnowledgeItem,
) (model.KnowledgeItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[userID] = append(k.items[userID], item)
	return item, nil
}

func (k *KnowledgeStorage) ListKnowledge(_ context.Context, userID uuid.UUID) ([]model.KnowledgeItem, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return slices.Clone(k.items[userID]), nil
}

func (k *KnowledgeStorage) DeleteKnowledge(_ context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	items := k.items[userID]
	idx := slices.IndexFunc(
		items, func(item model.KnowledgeItem) bool {
			return item.ID == itemID
		},
	)
	if idx < 0 {
		return model.ErrKnowledgeItemDoesNotExist
	}
	k.items[userID] = slices.Delete(items, idx, idx+1)
	return nil
}

func (k *KnowledgeStorage) ClearKnowledge(_ context.Context, userID uuid.UUID) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.items, userID)
	return nil
}
