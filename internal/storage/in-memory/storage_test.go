package in_memory

import (
	"testing"

	"github.com/iamvkosarev/lunaris-ai/internal/storage/storagetest"
)

func TestAIChatStorage(t *testing.T) {
	storagetest.TestChatStorage(t, NewAIChatStorage())
}

func TestAIChatStorage_ConcurrentAppends(t *testing.T) {
	storagetest.TestChatStorageConcurrentAppends(t, NewAIChatStorage())
}

func TestUserStorage(t *testing.T) {
	storagetest.TestUserStorage(t, NewUserStorage())
}

func TestKnowledgeStorage(t *testing.T) {
	storagetest.TestKnowledgeStorage(t, NewKnowledgeStorage())
}
