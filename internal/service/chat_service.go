package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firmdesk/firmdesk-backend/internal/ai"
	"github.com/firmdesk/firmdesk-backend/internal/config"
	"github.com/firmdesk/firmdesk-backend/internal/memory"
	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/rag"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var (
	// ErrEmptyMessage rejects blank prompts before any other work.
	ErrEmptyMessage = errors.New("message is required")
	// ErrChatLimitReached rejects turns on chats at the hard message cap.
	ErrChatLimitReached = errors.New("chat message limit reached")
)

const chatTitleMaxRunes = 80

// ChatService runs one chat turn end to end: quota gate, length gates,
// in-memory history, retrieval decision, model call, then persistence and
// usage accounting. The model call is the only step allowed to fail the
// turn once gating has passed.
type ChatService struct {
	cfg       config.ChatConfig
	quota     *QuotaService
	perms     *PermissionService
	chats     *repo.ChatRepo
	messages  *repo.MessageRepo
	memory    *memory.Store
	trigger   *rag.Trigger
	retriever *rag.Retriever
	generator ai.IGenerator
}

func NewChatService(
	cfg config.ChatConfig,
	quota *QuotaService,
	perms *PermissionService,
	chats *repo.ChatRepo,
	messages *repo.MessageRepo,
	mem *memory.Store,
	trigger *rag.Trigger,
	retriever *rag.Retriever,
	generator ai.IGenerator,
) *ChatService {
	return &ChatService{
		cfg:       cfg,
		quota:     quota,
		perms:     perms,
		chats:     chats,
		messages:  messages,
		memory:    mem,
		trigger:   trigger,
		retriever: retriever,
		generator: generator,
	}
}

type SendRequest struct {
	UserID string
	// ChatID selects an existing chat; empty starts a new one.
	ChatID string
	// ConversationID keys the in-process history; defaults to the chat id.
	ConversationID string
	Message        string
	ForceRetrieval bool
	// AttachmentName and AttachmentText carry an uploaded file's extracted
	// content into this turn's prompt. The attachment never enters the
	// conversation memory; only the typed message does.
	AttachmentName string
	AttachmentText string
}

type SendResult struct {
	Reply          string `json:"reply"`
	ChatID         string `json:"chat_id"`
	ConversationID string `json:"conversation_id"`
	ContextUsed    bool   `json:"context_used"`
	// Notice is a length warning surfaced to the UI the first turn a
	// threshold is crossed, empty otherwise.
	Notice       string `json:"notice,omitempty"`
	MessageCount int    `json:"message_count"`
	// FileName echoes the attachment of a file-chat turn.
	FileName string `json:"file_name,omitempty"`
}

// SendMessage executes one turn. Order matters: quota and length gates run
// before the model is invoked, and the usage counter moves only after a
// reply was produced. The raw user message, not the retrieval-augmented
// prompt, is what enters the conversation memory.
func (s *ChatService) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	logger := logutil.GetLogger(ctx)
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	status, err := s.quota.Check(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, &QuotaExceededError{Used: status.Used, Limit: status.Limit}
	}

	caps, _, err := s.perms.Effective(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	chat, count, err := s.resolveChat(ctx, req.UserID, req.ChatID, message)
	if err != nil {
		return nil, err
	}
	if count >= s.cfg.MaxMessagesPerChat {
		return nil, ErrChatLimitReached
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = chat.ID
	}
	history := s.memory.Get(conversationID)

	contextBlock := ""
	if caps.UseRetrieval && s.trigger.ShouldRetrieve(message, req.ForceRetrieval) {
		contextBlock = s.retriever.Retrieve(ctx, message)
	}

	prompt := buildPrompt(contextBlock, message)
	if req.AttachmentText != "" {
		prompt = attachPrompt(prompt, req.AttachmentName, req.AttachmentText)
	}
	reply, err := s.generator.Chat(ctx, toAIMessages(history), prompt)
	if err != nil {
		logger.Error("model call failed", zap.String("chat_id", chat.ID), zap.Error(err))
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	s.memory.Append(conversationID,
		model.Turn{Role: model.TurnRoleUser, Text: message},
		model.Turn{Role: model.TurnRoleModel, Text: reply},
	)
	s.persistTurn(ctx, chat.ID, message, reply)
	s.quota.RecordUsage(ctx, req.UserID)

	return &SendResult{
		Reply:          reply,
		ChatID:         chat.ID,
		ConversationID: conversationID,
		ContextUsed:    contextBlock != "",
		Notice:         noticeFor(count, count+2, s.cfg.NoticeSoftThreshold, s.cfg.NoticeHardThreshold, s.cfg.MaxMessagesPerChat),
		MessageCount:   count + 2,
	}, nil
}

// resolveChat loads an existing owned chat or creates a fresh one titled
// from the first message, and returns its persisted message count.
func (s *ChatService) resolveChat(ctx context.Context, userID, chatID, message string) (*model.Chat, int, error) {
	if chatID != "" {
		chat, err := s.chats.Get(ctx, userID, chatID)
		if err != nil {
			return nil, 0, err
		}
		count, err := s.messages.CountByChat(ctx, chatID)
		if err != nil {
			return nil, 0, err
		}
		return chat, count, nil
	}
	now := timeutil.NowUnix()
	chat := &model.Chat{
		ID:     newID(),
		UserID: userID,
		Title:  titleFor(message),
		Ctime:  now,
		Mtime:  now,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, 0, err
	}
	return chat, 0, nil
}

// persistTurn writes both halves of the exchange and bumps the chat mtime.
// Best-effort: the reply was already produced, so storage trouble is logged
// rather than surfaced.
func (s *ChatService) persistTurn(ctx context.Context, chatID, message, reply string) {
	logger := logutil.GetLogger(ctx)
	now := timeutil.NowUnix()
	userMsg := &model.ChatMessage{
		ID:      newID(),
		ChatID:  chatID,
		Role:    model.TurnRoleUser,
		Content: message,
		Ctime:   now,
	}
	modelMsg := &model.ChatMessage{
		ID:      newID(),
		ChatID:  chatID,
		Role:    model.TurnRoleModel,
		Content: reply,
		Ctime:   now + 1,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		logger.Error("persist user message failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if err := s.messages.Create(ctx, modelMsg); err != nil {
		logger.Error("persist model message failed", zap.String("chat_id", chatID), zap.Error(err))
	}
	if err := s.chats.Touch(ctx, chatID, now); err != nil {
		logger.Error("touch chat failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

// ListChats returns the caller's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	return s.chats.ListByUser(ctx, userID)
}

// History returns the persisted messages of one owned chat in order.
func (s *ChatService) History(ctx context.Context, userID, chatID string, limit, offset uint) ([]model.ChatMessage, error) {
	if _, err := s.chats.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = uint(s.cfg.MaxMessagesPerChat)
	}
	return s.messages.ListByChat(ctx, chatID, limit, offset)
}

// DeleteChat removes the chat, its persisted messages, and its in-process
// history.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID string) error {
	if err := s.chats.Delete(ctx, userID, chatID); err != nil {
		return err
	}
	if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
		logutil.GetLogger(ctx).Error("delete chat messages failed",
			zap.String("chat_id", chatID), zap.Error(err))
	}
	s.memory.Clear(chatID)
	return nil
}

// ClearConversation drops only the in-process history; persisted messages
// are untouched.
func (s *ChatService) ClearConversation(conversationID string) {
	s.memory.Clear(conversationID)
}

// RenameChat updates the title of an owned chat.
func (s *ChatService) RenameChat(ctx context.Context, userID, chatID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required: %w", appErr.ErrInvalid)
	}
	return s.chats.UpdateTitle(ctx, userID, chatID, titleFor(title), timeutil.NowUnix())
}

func toAIMessages(turns []model.Turn) []ai.Message {
	if len(turns) == 0 {
		return nil
	}
	out := make([]ai.Message, 0, len(turns))
	for _, turn := range turns {
		out = append(out, ai.Message{Role: turn.Role, Text: turn.Text})
	}
	return out
}

// buildPrompt prefixes the user message with a labeled documentary-context
// section. With no context the message passes through untouched.
func buildPrompt(contextBlock, message string) string {
	if contextBlock == "" {
		return message
	}
	var sb strings.Builder
	sb.WriteString("Use the internal documents below when they are relevant to the question. ")
	sb.WriteString("If they do not cover it, answer from general knowledge and say so.\n\n")
	sb.WriteString("=== INTERNAL DOCUMENTS ===\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n=== END INTERNAL DOCUMENTS ===\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(message)
	return sb.String()
}

// attachPrompt prepends an uploaded file's extracted text to the prompt.
func attachPrompt(prompt, name, text string) string {
	var sb strings.Builder
	sb.WriteString("=== ATTACHED FILE")
	if name != "" {
		sb.WriteString(": ")
		sb.WriteString(name)
	}
	sb.WriteString(" ===\n")
	sb.WriteString(text)
	sb.WriteString("\n=== END ATTACHED FILE ===\n\n")
	sb.WriteString(prompt)
	return sb.String()
}

// noticeFor reports the UI warning for a chat growing from prev to next
// persisted messages. A threshold fires only on the turn that crosses it.
func noticeFor(prev, next, soft, hard, max int) string {
	if prev < hard && next >= hard {
		return fmt.Sprintf("This chat is close to its %d message limit. Start a new chat to keep full context.", max)
	}
	if prev < soft && next >= soft {
		return "This chat is getting long. Consider starting a new chat for a new topic."
	}
	return ""
}

func titleFor(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= chatTitleMaxRunes {
		return string(runes)
	}
	return string(runes[:chatTitleMaxRunes])
}
