package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat message roles as stored. The Gemini API uses "model" instead of
// "assistant"; the mapping happens in the provider client, not here.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User is an account record. The password hash is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	AvatarURL    *string            `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Material is a piece of study content. Immutable after creation; the
// user_id is not checked against an existing user anywhere.
type Material struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Title      string             `bson:"title" json:"title"`
	Subject    *string            `bson:"subject,omitempty" json:"subject,omitempty"`
	Content    string             `bson:"content" json:"content"`
	Difficulty string             `bson:"difficulty" json:"difficulty"` // easy|normal|hard
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

type Video struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Subject   *string            `bson:"subject,omitempty" json:"subject,omitempty"`
	URL       string             `bson:"url" json:"url"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// EmotionLog is an append-only record of a learner's reported emotion.
// The emotion string is unconstrained at this layer.
type EmotionLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Emotion   string             `bson:"emotion" json:"emotion"`
	Note      *string            `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ChatMessage is one turn of a user's conversation, ordered by CreatedAt.
type ChatMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	Role           string             `bson:"role" json:"role"` // user|assistant
	Content        string             `bson:"content" json:"content"`
	EmotionContext *string            `bson:"emotion_context,omitempty" json:"emotion_context,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
