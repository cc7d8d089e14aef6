package model

type Persona struct {
	Name    string
	Tone    string
	Style   string
	Context string
	Memory  string
}

func DefaultPersona() Persona {
	return Persona{
		Name:    "Lunaris",
		Tone:    "Professional, Warm, and Intelligent",
		Style:   "Concise",
		Context: "Advanced AI Assistant",
	}
}

type RoleplayConfig struct {
	CharacterName        string `json:"character_name"`
	CharacterDescription string `json:"character_description"`
	Scenario             string `json:"scenario"`
	WorldContext         string `json:"world_context,omitempty"`
}

type LearningLevel string

const (
	LearningLevelBeginner     = LearningLevel("Beginner")
	LearningLevelIntermediate = LearningLevel("Intermediate")
	LearningLevelAdvanced     = LearningLevel("Advanced")
)

type TeachingStyle string

const (
	TeachingStyleSocratic  = TeachingStyle("Socratic")
	TeachingStyleDirect    = TeachingStyle("Direct")
	TeachingStylePractical = TeachingStyle("Practical")
)

type LearningConfig struct {
	Topic         string        `json:"topic"`
	CurrentLevel  LearningLevel `json:"current_level"`
	Goal          string        `json:"goal"`
	TeachingStyle TeachingStyle `json:"teaching_style"`
}
