package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used when no MONGO_URI is configured
// and by tests. It generates the same ObjectID-style ids as the Mongo
// adapter so handler behavior is identical. Data does not survive restarts.
type MemoryStore struct {
	mu           sync.RWMutex
	users        []User
	materials    []Material
	videos       []Video
	emotionLogs  []EmotionLog
	chatMessages []ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) CollectionNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	if len(s.users) > 0 {
		names = append(names, collUsers)
	}
	if len(s.materials) > 0 {
		names = append(names, collMaterials)
	}
	if len(s.videos) > 0 {
		names = append(names, collVideos)
	}
	if len(s.emotionLogs) > 0 {
		names = append(names, collEmotionLogs)
	}
	if len(s.chatMessages) > 0 {
		names = append(names, collChatMessages)
	}
	return names, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	s.users = append(s.users, *user)
	return user.ID.Hex(), nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Email == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateMaterial(ctx context.Context, material *Material) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	material.ID = primitive.NewObjectID()
	material.CreatedAt = time.Now()
	s.materials = append(s.materials, *material)
	return material.ID.Hex(), nil
}

func (s *MemoryStore) MaterialsByUser(ctx context.Context, userID string) ([]Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var materials []Material
	for _, m := range s.materials {
		if m.UserID == userID {
			materials = append(materials, m)
		}
	}
	return materials, nil
}

func (s *MemoryStore) MaterialByID(ctx context.Context, id string) (*Material, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil // malformed id is treated as absent
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.materials {
		if s.materials[i].ID == oid {
			material := s.materials[i]
			return &material, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateVideo(ctx context.Context, video *Video) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	s.videos = append(s.videos, *video)
	return video.ID.Hex(), nil
}

func (s *MemoryStore) VideosByUser(ctx context.Context, userID string) ([]Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var videos []Video
	for _, v := range s.videos {
		if v.UserID == userID {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

func (s *MemoryStore) CreateEmotionLog(ctx context.Context, entry *EmotionLog) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	s.emotionLogs = append(s.emotionLogs, *entry)
	return entry.ID.Hex(), nil
}

func (s *MemoryStore) EmotionLogsByUser(ctx context.Context, userID string) ([]EmotionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var logs []EmotionLog
	for _, l := range s.emotionLogs {
		if l.UserID == userID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (s *MemoryStore) CreateChatMessage(ctx context.Context, msg *ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	s.chatMessages = append(s.chatMessages, *msg)
	return msg.ID.Hex(), nil
}

func (s *MemoryStore) RecentChatMessages(ctx context.Context, userID string, limit int64) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var mine []ChatMessage
	for _, m := range s.chatMessages {
		if m.UserID == userID {
			mine = append(mine, m)
		}
	}
	if limit > 0 && int64(len(mine)) > limit {
		mine = mine[int64(len(mine))-limit:]
	}
	// Slice order is insertion order; flip to newest first to match the
	// Mongo adapter's sort.
	messages := make([]ChatMessage, 0, len(mine))
	for i := len(mine) - 1; i >= 0; i-- {
		messages = append(messages, mine[i])
	}
	return messages, nil
}
