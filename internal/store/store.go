package store

import "context"

// Store is the persistence facade over the document database. Create methods
// assign the id and created_at stamp on the passed record and return the new
// id as a hex string. Lookups that miss, including lookups with a malformed
// id, return (nil, nil) rather than an error: callers treat "absent" as a
// value, not a failure.
type Store interface {
	CreateUser(ctx context.Context, user *User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	CreateMaterial(ctx context.Context, material *Material) (string, error)
	MaterialsByUser(ctx context.Context, userID string) ([]Material, error)
	MaterialByID(ctx context.Context, id string) (*Material, error)

	CreateVideo(ctx context.Context, video *Video) (string, error)
	VideosByUser(ctx context.Context, userID string) ([]Video, error)

	CreateEmotionLog(ctx context.Context, entry *EmotionLog) (string, error)
	EmotionLogsByUser(ctx context.Context, userID string) ([]EmotionLog, error)

	CreateChatMessage(ctx context.Context, msg *ChatMessage) (string, error)
	// RecentChatMessages returns up to limit messages for the user,
	// newest first. Callers reverse the slice when they need turn order.
	RecentChatMessages(ctx context.Context, userID string, limit int64) ([]ChatMessage, error)

	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}
