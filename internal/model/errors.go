package model

import "errors"

var (
	ErrUnknownModel              = errors.New("unknown model identity")
	ErrTelegramUserDoesNotExists = errors.New("telegram user doesn't exists")
	ErrUserDoesNotExists         = errors.New("user doesn't exists")
	ErrChatDoesNotExist          = errors.New("chat does not exist")
	ErrKnowledgeItemDoesNotExist = errors.New("knowledge item does not exist")
)
