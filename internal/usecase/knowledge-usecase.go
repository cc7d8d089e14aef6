package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

var ErrEmptyKnowledgeItem = errors.New("knowledge item needs a title and content")

type KnowledgeStorage interface {
	AddKnowledge(ctx context.Context, userID uuid.UUID, item model.KnowledgeItem) (model.KnowledgeItem, error)
	ListKnowledge(ctx context.Context, userID uuid.UUID) ([]model.KnowledgeItem, error)
	DeleteKnowledge(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
	ClearKnowledge(ctx context.Context, userID uuid.UUID) error
}

type KnowledgeUsecaseDeps struct {
	KnowledgeStorage KnowledgeStorage
}

type KnowledgeUsecase struct {
	KnowledgeUsecaseDeps
}

func NewKnowledgeUsecase(deps KnowledgeUsecaseDeps) *KnowledgeUsecase {
	return &KnowledgeUsecase{KnowledgeUsecaseDeps: deps}
}

func (k *KnowledgeUsecase) Add(ctx context.Context, userID uuid.UUID, title, content string) (model.KnowledgeItem, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return model.KnowledgeItem{}, ErrEmptyKnowledgeItem
	}
	item, err := k.KnowledgeStorage.AddKnowledge(
		ctx, userID, model.KnowledgeItem{
			ID:        uuid.New(),
			Title:     title,
			Content:   content,
			UpdatedAt: time.Now(),
		},
	)
	if err != nil {
		return model.KnowledgeItem{}, fmt.Errorf("failed to add knowledge: %w", err)
	}
	return item, nil
}

// ParseEntry splits "title: content" input. Without a colon the first line is the title.
func ParseEntry(raw string) (title, content string) {
	raw = strings.TrimSpace(raw)
	if before, after, ok := strings.Cut(raw, ":"); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	if before, after, ok := strings.Cut(raw, "\n"); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", raw
}

func (k *KnowledgeUsecase) List(ctx context.Context, userID uuid.UUID) ([]model.KnowledgeItem, error) {
	return k.KnowledgeStorage.ListKnowledge(ctx, userID)
}

// Remove deletes the item at the 1-based position shown by List.
func (k *KnowledgeUsecase) Remove(ctx context.Context, userID uuid.UUID, position int) (model.KnowledgeItem, error) {
	items, err := k.KnowledgeStorage.ListKnowledge(ctx, userID)
	if err != nil {
		return model.KnowledgeItem{}, fmt.Errorf("failed to list knowledge: %w", err)
	}
	if position < 1 || position > len(items) {
		return model.KnowledgeItem{}, model.ErrKnowledgeItemDoesNotExist
	}
	item := items[position-1]
	if err = k.KnowledgeStorage.DeleteKnowledge(ctx, userID, item.ID); err != nil {
		return model.KnowledgeItem{}, err
	}
	return item, nil
}

func (k *KnowledgeUsecase) Clear(ctx context.Context, userID uuid.UUID) error {
	return k.KnowledgeStorage.ClearKnowledge(ctx, userID)
}
