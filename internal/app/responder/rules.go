package responder

// Rule maps a set of trigger substrings to a canned companion reply.
// RevealExercises marks the reply as one that should also surface the
// breathing exercise menu.
type Rule struct {
	Triggers        []string
	Reply           string
	RevealExercises bool
}

// defaultRules is Felix's reply table. Order matters: the first rule with a
// trigger contained in the normalized input wins, so a message mentioning
// both "anxious" and "breathing" gets the anxiety reply.
var defaultRules = []Rule{
	{
		Triggers: []string{"anxious", "worried"},
		Reply:    "I hear that you're feeling anxious. That's completely valid. Would you like to try a breathing exercise together? It can help calm your nervous system.",
	},
	{
		Triggers: []string{"sad", "down"},
		Reply:    "I'm sorry you're feeling sad right now. Sadness is a natural emotion, and it's okay to feel it. Would you like to talk about what's on your mind, or would you prefer to try a gentle activity?",
	},
	{
		Triggers: []string{"angry", "frustrated"},
		Reply:    "Anger can be intense to experience. Let's take a moment to breathe together and then explore what might be underneath this feeling.",
	},
	{
		Triggers: []string{"tired", "exhausted"},
		Reply:    "It sounds like you're feeling drained. Rest is important for emotional well-being. Would you like to try a gentle breathing exercise or meditation?",
	},
	{
		Triggers:        []string{"breathing", "breathe"},
		Reply:           "Great idea! Breathing exercises can be incredibly helpful. Let me show you some options to choose from.",
		RevealExercises: true,
	},
	{
		Triggers: []string{"thank"},
		Reply:    "You're very welcome! I'm here whenever you need support. Remember, it's okay to feel your feelings fully.",
	},
}

// defaultReply is returned when no rule matches.
const defaultReply = "Thank you for sharing that with me. I'm here to listen and support you. What would feel most helpful right now - talking more about how you're feeling, or trying a calming exercise?"

// Greeting is the companion message every new conversation is seeded with.
const Greeting = "Hello! I'm Felix, your emotional processing companion. How are you feeling today?"
