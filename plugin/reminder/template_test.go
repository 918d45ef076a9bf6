package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMessageCustomWins(t *testing.T) {
	custom := "Don't forget your calculus notes!"
	template := "{{sessionTitle}} in {{minutesUntil}} minutes"

	msg := RenderMessage(&custom, &template, "Calculus", nil, 15)
	assert.Equal(t, custom, msg.Body)
}

func TestRenderMessageTemplateSubstitution(t *testing.T) {
	template := "{{sessionTitle}} ({{subject}}) starts in {{minutesUntil}} minutes"
	subject := "Math"

	msg := RenderMessage(nil, &template, "Calculus Review", &subject, 30)
	assert.Equal(t, "Calculus Review (Math) starts in 30 minutes", msg.Body)
}

func TestRenderMessageTemplateMissingSubject(t *testing.T) {
	template := "{{subject}} session in {{minutesUntil}} min"

	msg := RenderMessage(nil, &template, "Review", nil, 5)
	assert.Equal(t, "General session in 5 min", msg.Body)
}

func TestRenderMessageDefaultBuckets(t *testing.T) {
	cases := []struct {
		minutes int
		title   string
		body    string
	}{
		{1, "🚨 Starting in 1 Minute!", `"Physics" starts in 1 minute. Get ready to focus!`},
		{5, "⏰ Almost Time to Study!", `"Physics" starts in 5 minutes. Grab your materials!`},
		{45, "📚 Study Session Coming Up", `"Physics" starts in 45 minutes. Plan your approach!`},
		{60, "🕐 1 Hour Until Study Session", `"Physics" starts in 1 hour. Set your goals!`},
		{90, "📅 Study Session Reminder", `"Physics" starts in 1 hour 30 minutes. Stay prepared!`},
		{120, "📅 Study Session Reminder", `"Physics" starts in 2 hours. Stay prepared!`},
		{1440, "📆 Study Session Tomorrow", `"Physics" starts in 1 day. Don't forget to review your notes!`},
		{2880, "📆 Upcoming Study Session", `"Physics" starts in 2 days. Mark your calendar!`},
	}

	for _, tc := range cases {
		msg := RenderMessage(nil, nil, "Physics", nil, tc.minutes)
		assert.Equal(t, tc.title, msg.Title, "minutes=%d", tc.minutes)
		assert.Equal(t, tc.body, msg.Body, "minutes=%d", tc.minutes)
	}
}

func TestRenderMessageEmptyCustomFallsThrough(t *testing.T) {
	empty := ""
	msg := RenderMessage(&empty, nil, "Physics", nil, 60)
	assert.Equal(t, "🕐 1 Hour Until Study Session", msg.Title)
}
