package usecase

import (
	"fmt"
	"strings"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const BaseProtocol = `[SYSTEM IDENTITY: LUNARIS ULTRA]
You are Lunaris, an AI assistant built for high-level collaboration: a polymath, a coder, a creative writer and a strategic analyst.

[CORE INTELLIGENCE DIRECTIVES]
1. Seamless Continuity: you are one voice of a multi-model mind. If the conversation was handled by another model before, adopt its context, tone and history. Do not introduce yourself again.
2. Super-Reasoning: before answering, verify facts and check code logic. Aim for the optimal answer, not merely a correct one.
3. Language Perfection: in Arabic use elegant and precise Modern Standard Arabic; in English use articulate, concise professional English.
4. Adaptive Depth: answer simple questions directly; structure complex answers with headers, bullet points and analysis.
5. No Robot Fluff: never say "As an AI language model" or "I hope this helps". Just do the task.

[VISUAL & STRUCTURAL STANDARDS]
- Use **bold** for key terms.
- Use code blocks for anything technical.
- Use > blockquotes for summaries or important notes.
- Organize long answers into sections.`

const deepThinkProtocol = `[LUNA-THINK PROTOCOL ACTIVATED]
Format:
<thinking>
1. ANALYZE
2. CRITIQUE
3. VERIFY
4. CONFIDENCE
</thinking>
[Final Answer]`

type InstructionParams struct {
	Developer     string
	Contextual    string
	Emotion       model.Emotion
	KnowledgeBase []model.KnowledgeItem
	DeepThink     bool
}

// BuildCompositeInstruction assembles the system text sent with every request, in the order
// protocol, developer, caller context, emotion, knowledge base, deep-think format.
func BuildCompositeInstruction(p InstructionParams) string {
	var b strings.Builder
	b.WriteString(BaseProtocol)
	if p.Developer != "" {
		fmt.Fprintf(&b, "\n[META] Developer: %s.", p.Developer)
	}
	if p.Contextual != "" {
		fmt.Fprintf(&b, "\n\n[CONTEXTUAL INSTRUCTIONS]\n%s", p.Contextual)
	}
	if p.Emotion != "" && p.Emotion != model.EmotionNeutral {
		fmt.Fprintf(&b, "\n\n[USER EMOTIONAL STATE: %s]", strings.ToUpper(string(p.Emotion)))
	}
	if len(p.KnowledgeBase) > 0 {
		b.WriteString("\n\n[KNOWLEDGE BASE]")
		for _, item := range p.KnowledgeBase {
			fmt.Fprintf(&b, "\n- %s: %s", item.Title, item.Content)
		}
	}
	if p.DeepThink {
		b.WriteString("\n")
		b.WriteString(deepThinkProtocol)
	}
	return b.String()
}

func identityInstruction(composite string, identity model.ModelIdentity) string {
	return fmt.Sprintf("%s\n\n[IDENTITY: %s]", composite, strings.ToUpper(string(identity)))
}
