package model

import (
	"github.com/google/uuid"
)

type Language string

const (
	LanguageEnglish = Language("en")
	LanguageArabic  = Language("ar")
)

type UserSettings struct {
	DeepThink bool
	UseSearch bool
	Language  Language
	Persona   Persona
	Emotion   Emotion
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		Language: LanguageEnglish,
		Persona:  DefaultPersona(),
		Emotion:  EmotionNeutral,
	}
}

type User struct {
	UserID     uuid.UUID
	TelegramID int64
	Roles      []UserRole
	LastAIChat uuid.UUID
	Settings   UserSettings
}
