package usecase

import (
	"fmt"
	"strings"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

// ContextInstruction builds the caller-side instruction for a chat. Roleplay takes precedence
// over learning, learning over the user's persona.
func ContextInstruction(chat model.AIChat, persona model.Persona) string {
	switch {
	case chat.Mode == model.ChatModeRoleplay && chat.Roleplay != nil:
		return RoleplayInstruction(*chat.Roleplay)
	case chat.Mode == model.ChatModeLearning && chat.Learning != nil:
		return LearningInstruction(*chat.Learning)
	default:
		return PersonaInstruction(persona)
	}
}

func RoleplayInstruction(rc model.RoleplayConfig) string {
	world := rc.WorldContext
	if world == "" {
		world = "General"
	}
	return fmt.Sprintf(
		`[ROLEPLAY MODE ACTIVATED]
You are strictly acting as the character: %q.
Character Description: %q.
World Context: %q.
Current Scenario/Context: %q.

RULES:
1. Stay in character at all times. Never break the fourth wall and never say "As an AI".
2. Describe your actions, surroundings and thoughts in detail.
3. React to the user's actions realistically within the story logic.
4. If the user speaks, treat them as another character in the scene.
5. Drive the narrative forward together with the user.`,
		rc.CharacterName, rc.CharacterDescription, world, rc.Scenario,
	)
}

func LearningInstruction(lc model.LearningConfig) string {
	return fmt.Sprintf(
		`[LEARNING MODE ACTIVATED - AI TUTOR]
You are an expert adaptive tutor for the subject: %q.
User's Current Level: %s.
User's Goal: %q.
Teaching Style: %s.

PEDAGOGICAL STRATEGY:
1. ASSESS: keep checking the user's understanding through their answers.
2. ADAPT: simplify and use analogies when the user struggles, raise difficulty when they do not.
3. ENGAGE: ask guiding questions instead of lecturing.
4. VERIFY: periodically ask the user to explain a concept back or solve a mini-problem.
5. MATERIALS: treat uploaded images or text as the primary source material for the lesson.
6. FEEDBACK: give immediate constructive feedback and explain why an answer is right or wrong.

Guide the user from their current level to their goal efficiently.`,
		lc.Topic, lc.CurrentLevel, lc.Goal, lc.TeachingStyle,
	)
}

func PersonaInstruction(p model.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identity: %s. Tone: %s. Context: %s.", p.Name, p.Tone, p.Context)
	if p.Style != "" {
		fmt.Fprintf(&b, " Style: %s.", p.Style)
	}
	if p.Memory != "" {
		fmt.Fprintf(&b, " Memory: %s", p.Memory)
	}
	return b.String()
}

// OpeningMessage is the first model message of a roleplay or learning chat. Default chats
// start empty.
func OpeningMessage(chat model.AIChat, lang model.Language) string {
	switch {
	case chat.Mode == model.ChatModeRoleplay && chat.Roleplay != nil:
		return fmt.Sprintf("*%s*", chat.Roleplay.Scenario)
	case chat.Mode == model.ChatModeLearning && chat.Learning != nil:
		lc := chat.Learning
		if lang == model.LanguageArabic {
			return fmt.Sprintf(
				"مرحباً بك في رحلة تعلم **%s**! أنا معلمك الشخصي.\n\nلقد حددت مستواك كـ **%s** وهدفك هو: **%s**.\n\nدعنا نبدأ! هل يمكنك إخباري المزيد عن خلفيتك في هذا الموضوع، أو هل تفضل أن أبدأ بتقييم سريع؟",
				lc.Topic, lc.CurrentLevel, lc.Goal,
			)
		}
		return fmt.Sprintf(
			"Welcome to your learning journey for **%s**! I am your personal tutor.\n\nYou've set your level as **%s** with the goal: **%s**.\n\nLet's begin! Can you tell me a bit more about your background, or would you like me to start with a quick assessment?",
			lc.Topic, lc.CurrentLevel, lc.Goal,
		)
	default:
		return ""
	}
}

// ExportStory renders a roleplay chat as plain text, user turns marked as actions.
func ExportStory(chat model.AIChat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", chat.Title)
	if rc := chat.Roleplay; rc != nil {
		world := rc.WorldContext
		if world == "" {
			world = "Unknown"
		}
		fmt.Fprintf(&b, "Character: %s\nDescription: %s\nSetting: %s\n\n", rc.CharacterName, rc.CharacterDescription, world)
	}
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n\n")
	for _, message := range chat.Messages {
		if message.Role == model.MessageRoleModel {
			fmt.Fprintf(&b, "%s\n\n", message.Content)
			continue
		}
		fmt.Fprintf(&b, "> [Action/Dialogue]: %s\n\n", message.Content)
	}
	return b.String()
}
