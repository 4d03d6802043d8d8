package model

const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// Turn is one exchange half held in the in-process conversation memory.
// Immutable once created.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Chat struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Ctime  int64  `json:"ctime"`
	Mtime  int64  `json:"mtime"`
}

type ChatMessage struct {
	ID      string `json:"id"`
	ChatID  string `json:"chat_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Ctime   int64  `json:"ctime"`
}
