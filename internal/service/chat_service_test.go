package service

import (
	"strings"
	"testing"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptWithoutContext(t *testing.T) {
	require.Equal(t, "what is our vat position?", buildPrompt("", "what is our vat position?"))
}

func TestBuildPromptWithContext(t *testing.T) {
	got := buildPrompt("[Source: brief.txt]\nRousseau retained us in 2024.", "who is rousseau?")
	require.Contains(t, got, "=== INTERNAL DOCUMENTS ===")
	require.Contains(t, got, "[Source: brief.txt]\nRousseau retained us in 2024.")
	require.Contains(t, got, "=== END INTERNAL DOCUMENTS ===")
	require.True(t, strings.HasSuffix(got, "Question: who is rousseau?"))
}

func TestAttachPrompt(t *testing.T) {
	got := attachPrompt("summarize this", "notes.txt", "line one\nline two")
	require.True(t, strings.HasPrefix(got, "=== ATTACHED FILE: notes.txt ===\n"))
	require.Contains(t, got, "line one\nline two")
	require.True(t, strings.HasSuffix(got, "summarize this"))

	anon := attachPrompt("summarize this", "", "body")
	require.True(t, strings.HasPrefix(anon, "=== ATTACHED FILE ===\n"))
}

func TestNoticeFor(t *testing.T) {
	const (
		soft = 150
		hard = 180
		max  = 200
	)
	tests := []struct {
		name string
		prev int
		want string
	}{
		{"quiet early", 10, ""},
		{"just below soft", 146, ""},
		{"crosses soft", 148, "This chat is getting long. Consider starting a new chat for a new topic."},
		{"lands exactly on soft", 149, "This chat is getting long. Consider starting a new chat for a new topic."},
		{"already past soft", 152, ""},
		{"crosses hard", 178, "This chat is close to its 200 message limit. Start a new chat to keep full context."},
		{"already past hard", 182, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, noticeFor(tt.prev, tt.prev+2, soft, hard, max))
		})
	}
}

func TestNoticeForHardWinsWhenBothCrossed(t *testing.T) {
	// Degenerate config where one turn jumps both thresholds.
	got := noticeFor(0, 2, 1, 2, 10)
	require.Contains(t, got, "limit")
}

func TestToAIMessages(t *testing.T) {
	require.Nil(t, toAIMessages(nil))
	got := toAIMessages([]model.Turn{
		{Role: model.TurnRoleUser, Text: "hello"},
		{Role: model.TurnRoleModel, Text: "hi there"},
	})
	require.Len(t, got, 2)
	require.Equal(t, "user", got[0].Role)
	require.Equal(t, "hello", got[0].Text)
	require.Equal(t, "model", got[1].Role)
}

func TestTitleFor(t *testing.T) {
	require.Equal(t, "short question", titleFor("  short question  "))
	long := strings.Repeat("é", 120)
	require.Equal(t, 80, len([]rune(titleFor(long))))
}
