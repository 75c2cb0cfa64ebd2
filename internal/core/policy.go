package core

// Policy is a content adaptation recommendation for one learner emotion.
type Policy struct {
	Strategy   string   `json:"strategy"`
	Difficulty string   `json:"difficulty"` // easy|normal|hard
	Activities []string `json:"activities,omitempty"`
}

// Hand-authored adaptation rules. Pure data; nothing here is derived or
// learned.
var policyTable = map[string]Policy{
	"sad":      {Strategy: "Make it playful", Difficulty: "normal", Activities: []string{"puzzle", "flashcards"}},
	"confused": {Strategy: "Simplify & add examples", Difficulty: "easy"},
	"angry":    {Strategy: "Calm & simplify", Difficulty: "easy"},
	"happy":    {Strategy: "Challenge more", Difficulty: "hard"},
	"neutral":  {Strategy: "Keep steady", Difficulty: "normal"},
}

// PolicyForEmotion looks up the adaptation policy for an emotion label.
// Unrecognized or empty labels resolve to the neutral policy.
func PolicyForEmotion(emotion string) Policy {
	if policy, ok := policyTable[emotion]; ok {
		return policy
	}
	return policyTable["neutral"]
}

// SuggestedIntro picks the guidance prefix prepended to a material when one
// was found for an /adapt request, keyed on the policy's difficulty.
func SuggestedIntro(policy Policy) string {
	switch policy.Difficulty {
	case "easy":
		return "Step-by-step explanation: "
	case "hard":
		return "Advanced challenge: "
	}
	if len(policy.Activities) > 0 {
		return "Interactive mode: "
	}
	return "Focus mode: "
}
