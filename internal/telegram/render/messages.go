package render

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Telegram limit for one text message
const MaxMessageLength = 4096

const (
	MsgWelcome = `👋 Hello, I'm %s.

Talk to me like you would to a friend. I remember what we discussed before and recall it when it matters.

You can also send me .txt, .md, .pdf or .docx files and ask about them.`

	MsgHelp = `Commands:
/start - Say hello
/help - Show this help
/forget - Drop the recent conversation from this chat

Everything else you send goes straight to me.`

	MsgForgotten = "🧹 Recent conversation dropped. Long-term memory is untouched."

	MsgUnknownCommand  = "❌ Unknown command. Try /help"
	MsgUnsupported     = "I can only read text, voice messages and documents for now."
	MsgVoiceDisabled   = "🎙 Voice messages are not enabled here. Please type your message."
	MsgVoiceEmpty      = "🎙 I couldn't make out any words in that voice message."
	MsgRateLimited     = "⚠️ Too many messages. Give me a moment."
	MsgRateLimitedHard = "🛑 You are writing too fast. Please wait a minute."
)

// Error messages
const (
	ErrGeneric      = "❌ Something went wrong. Please try again."
	ErrTimeout      = "⏱ That took too long. Please try again."
	ErrNetworkIssue = "🌐 I can't reach my services right now. Please try again later."
	ErrFileTooLarge = "📎 That file is too large for me."
	ErrBusy         = "🧠 My memory is busy right now. Give me a few seconds."
	ErrPanic        = "❌ Something broke on my side. Please try again."
)

// SplitMessage cuts text into parts that fit into a single Telegram message.
// Parts break on the last newline or space before the limit when possible.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		if i := lastBreak(runes[:limit]); i > 0 {
			cut = i
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == '\n' || runes[0] == ' ') {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func lastBreak(runes []rune) int {
	for i := len(runes) - 1; i > 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	for i := len(runes) - 1; i > 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
