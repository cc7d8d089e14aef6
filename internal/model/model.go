package model

import "fmt"

// ModelIdentity is the caller-facing label selecting a provider tier.
type ModelIdentity string

const (
	ModelLunaV       = ModelIdentity("Luna-V")
	ModelLunaDeep    = ModelIdentity("Luna-Deep")
	ModelLunaX       = ModelIdentity("Luna-X")
	ModelLunaO       = ModelIdentity("Luna-O")
	ModelLunarisMind = ModelIdentity("Lunaris-Mind")
)

var AllModelIdentities = []ModelIdentity{
	ModelLunarisMind,
	ModelLunaV,
	ModelLunaDeep,
	ModelLunaX,
	ModelLunaO,
}

// IsAuto reports whether the identity must be resolved by the router before dispatch.
func (m ModelIdentity) IsAuto() bool {
	return m == ModelLunarisMind
}

func (m ModelIdentity) Description() string {
	switch m {
	case ModelLunaV:
		return "fast multimodal"
	case ModelLunaDeep:
		return "deep reasoning"
	case ModelLunaX:
		return "code and speed"
	case ModelLunaO:
		return "open fallback"
	case ModelLunarisMind:
		return "auto routing"
	default:
		return "unknown"
	}
}

func ParseModelIdentity(s string) (ModelIdentity, error) {
	for _, identity := range AllModelIdentities {
		if string(identity) == s {
			return identity, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}
