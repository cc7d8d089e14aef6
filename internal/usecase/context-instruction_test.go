package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

func TestContextInstruction_Precedence(t *testing.T) {
	persona := model.DefaultPersona()
	roleplay := &model.RoleplayConfig{CharacterName: "Captain Vale", CharacterDescription: "pirate", Scenario: "storm"}
	learning := &model.LearningConfig{Topic: "Go", CurrentLevel: model.LearningLevelBeginner, Goal: "ship a CLI"}

	got := ContextInstruction(
		model.AIChat{Mode: model.ChatModeRoleplay, Roleplay: roleplay, Learning: learning}, persona,
	)
	assert.Contains(t, got, "[ROLEPLAY MODE ACTIVATED]")
	assert.Contains(t, got, `"Captain Vale"`)
	assert.Contains(t, got, `World Context: "General"`)

	got = ContextInstruction(model.AIChat{Mode: model.ChatModeLearning, Learning: learning}, persona)
	assert.Contains(t, got, "[LEARNING MODE ACTIVATED - AI TUTOR]")
	assert.Contains(t, got, "User's Current Level: Beginner.")

	got = ContextInstruction(model.AIChat{Mode: model.ChatModeRoleplay}, persona)
	assert.True(t, strings.HasPrefix(got, "Identity: Lunaris."))
}

func TestPersonaInstruction(t *testing.T) {
	p := model.Persona{Name: "Nova", Tone: "Calm", Context: "Tutor", Memory: "likes cats"}
	assert.Equal(t, "Identity: Nova. Tone: Calm. Context: Tutor. Memory: likes cats", PersonaInstruction(p))
}

func TestOpeningMessage(t *testing.T) {
	rp := model.AIChat{Mode: model.ChatModeRoleplay, Roleplay: &model.RoleplayConfig{Scenario: "A dark tavern"}}
	assert.Equal(t, "*A dark tavern*", OpeningMessage(rp, model.LanguageEnglish))

	learn := model.AIChat{Mode: model.ChatModeLearning, Learning: &model.LearningConfig{Topic: "Rust"}}
	assert.Contains(t, OpeningMessage(learn, model.LanguageEnglish), "**Rust**")
	assert.Contains(t, OpeningMessage(learn, model.LanguageArabic), "**Rust**")

	assert.Empty(t, OpeningMessage(model.AIChat{}, model.LanguageEnglish))
}

func TestExportStory(t *testing.T) {
	chat := model.AIChat{
		Title:    "Vale",
		Roleplay: &model.RoleplayConfig{CharacterName: "Vale", CharacterDescription: "pirate"},
		Messages: []model.Message{
			{Role: model.MessageRoleModel, Content: "*storm*"},
			{Role: model.MessageRoleUser, Content: "I grab the rope"},
		},
	}
	story := ExportStory(chat)
	assert.Contains(t, story, "Setting: Unknown")
	assert.Contains(t, story, "*storm*\n\n> [Action/Dialogue]: I grab the rope")
}
