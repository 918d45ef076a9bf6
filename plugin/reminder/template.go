package reminder

import (
	"fmt"
	"strconv"
	"strings"
)

// Message is a rendered push notification.
type Message struct {
	Title string
	Body  string
}

// RenderMessage renders the notification for one reminder. Precedence:
// custom message, then template substitution, then an offset-bucket default.
//
// Template placeholders are {{sessionTitle}}, {{subject}} and
// {{minutesUntil}}; a missing subject substitutes "General".
func RenderMessage(customMessage, messageTemplate *string, sessionTitle string, subject *string, minutesUntil int) Message {
	if customMessage != nil && *customMessage != "" {
		return Message{Title: "⏰ Study Session Reminder", Body: *customMessage}
	}

	if messageTemplate != nil && *messageTemplate != "" {
		subjectText := "General"
		if subject != nil && *subject != "" {
			subjectText = *subject
		}
		body := strings.ReplaceAll(*messageTemplate, "{{sessionTitle}}", sessionTitle)
		body = strings.ReplaceAll(body, "{{subject}}", subjectText)
		body = strings.ReplaceAll(body, "{{minutesUntil}}", strconv.Itoa(minutesUntil))
		return Message{Title: "⏰ Study Session Reminder", Body: body}
	}

	return defaultMessage(sessionTitle, minutesUntil)
}

// defaultMessage picks copy by how far out the session is.
func defaultMessage(sessionTitle string, minutesUntil int) Message {
	switch {
	case minutesUntil <= 1:
		return Message{
			Title: "🚨 Starting in 1 Minute!",
			Body:  fmt.Sprintf("%q starts in 1 minute. Get ready to focus!", sessionTitle),
		}
	case minutesUntil <= 5:
		return Message{
			Title: "⏰ Almost Time to Study!",
			Body:  fmt.Sprintf("%q starts in %d minutes. Grab your materials!", sessionTitle, minutesUntil),
		}
	case minutesUntil < 60:
		return Message{
			Title: "📚 Study Session Coming Up",
			Body:  fmt.Sprintf("%q starts in %d minutes. Plan your approach!", sessionTitle, minutesUntil),
		}
	case minutesUntil == 60:
		return Message{
			Title: "🕐 1 Hour Until Study Session",
			Body:  fmt.Sprintf("%q starts in 1 hour. Set your goals!", sessionTitle),
		}
	case minutesUntil < 1440:
		hours := minutesUntil / 60
		mins := minutesUntil % 60
		body := fmt.Sprintf("%q starts in %d hour%s", sessionTitle, hours, plural(hours))
		if mins > 0 {
			body += fmt.Sprintf(" %d minutes", mins)
		}
		body += ". Stay prepared!"
		return Message{Title: "📅 Study Session Reminder", Body: body}
	case minutesUntil == 1440:
		return Message{
			Title: "📆 Study Session Tomorrow",
			Body:  fmt.Sprintf("%q starts in 1 day. Don't forget to review your notes!", sessionTitle),
		}
	default:
		days := minutesUntil / 1440
		return Message{
			Title: "📆 Upcoming Study Session",
			Body:  fmt.Sprintf("%q starts in %d day%s. Mark your calendar!", sessionTitle, days, plural(days)),
		}
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
