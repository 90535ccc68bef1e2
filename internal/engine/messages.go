package engine

// MessageCategory names a fixed list of child-facing message variants. The
// engine picks a category and an index; the embedding layer resolves the
// actual wording (and any localization) at the presentation edge.
type MessageCategory string

const (
	MsgNone       MessageCategory = ""
	MsgTakeBreak  MessageCategory = "take_break"
	MsgStruggling MessageCategory = "struggling"
	MsgSimplify   MessageCategory = "simplify"
	MsgMistakesOK MessageCategory = "mistakes_ok"
	MsgKeepGoing  MessageCategory = "keep_going"
	MsgChallenge  MessageCategory = "challenge"
	MsgStreak     MessageCategory = "streak"
)

var messageCatalog = map[MessageCategory][]string{
	MsgTakeBreak: {
		"Wow, you worked so hard! Your tree needs some water — let's take a little break.",
		"Great effort today! How about we rest and come back soon?",
		"Time for a stretch! Your words will be waiting for you.",
	},
	MsgStruggling: {
		"These words are tricky! Let's try some easier ones together.",
		"You're being so brave with hard words. Here are some friendlier ones.",
	},
	MsgSimplify: {
		"Let's slow down a little and have some fun with these.",
		"Here come some words you'll really like!",
	},
	MsgMistakesOK: {
		"Mistakes help your brain grow! Keep going.",
		"Every try makes you stronger. You've got this!",
		"Oops is how we learn — let's try the next one.",
	},
	MsgKeepGoing: {
		"Asking for help is smart! Let's keep going together.",
		"You're doing great — hints are there whenever you need them.",
	},
	MsgChallenge: {
		"You're super speedy! Ready for something harder?",
		"Zoom! Let's try a bigger challenge.",
		"You make this look easy — time to level up!",
	},
	MsgStreak: {
		"Amazing streak! Your tree is growing so fast!",
		"You're on fire! Keep that streak going!",
		"Look at you go — every answer right!",
	},
}

// MessageCount returns the number of variants for a category.
func MessageCount(category MessageCategory) int {
	return len(messageCatalog[category])
}

// ResolveMessage maps a category and picked index to display text. Unknown
// categories and out-of-range indexes resolve to an empty string rather
// than failing; wording is never part of the engine contract.
func ResolveMessage(category MessageCategory, index int) string {
	list := messageCatalog[category]
	if len(list) == 0 {
		return ""
	}
	if index < 0 || index >= len(list) {
		index = 0
	}
	return list[index]
}
