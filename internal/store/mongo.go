package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, one per entity.
const (
	collUsers        = "user"
	collMaterials    = "material"
	collVideos       = "video"
	collEmotionLogs  = "emotionlog"
	collChatMessages = "chatmessage"
)

// MongoStore implements Store over a MongoDB database. There is no unique
// index on user email: registration does a best-effort existence check
// before inserting, so concurrent registrations can race. Closing that race
// means adding a unique index on user.email and translating the duplicate-key
// error, which is a store migration left out of scope.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, databaseName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb is not reachable: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(databaseName),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *MongoStore) insert(ctx context.Context, collection string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) CreateUser(ctx context.Context, user *User) (string, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if err := s.insert(ctx, collUsers, user); err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return user.ID.Hex(), nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.Collection(collUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateMaterial(ctx context.Context, material *Material) (string, error) {
	material.ID = primitive.NewObjectID()
	material.CreatedAt = time.Now()
	if err := s.insert(ctx, collMaterials, material); err != nil {
		return "", fmt.Errorf("failed to insert material: %w", err)
	}
	return material.ID.Hex(), nil
}

func (s *MongoStore) MaterialsByUser(ctx context.Context, userID string) ([]Material, error) {
	cursor, err := s.db.Collection(collMaterials).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	var materials []Material
	if err := cursor.All(ctx, &materials); err != nil {
		return nil, fmt.Errorf("failed to decode materials: %w", err)
	}
	return materials, nil
}

func (s *MongoStore) MaterialByID(ctx context.Context, id string) (*Material, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil // malformed id is treated as absent
	}
	var material Material
	err = s.db.Collection(collMaterials).FindOne(ctx, bson.M{"_id": oid}).Decode(&material)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query material by id: %w", err)
	}
	return &material, nil
}

func (s *MongoStore) CreateVideo(ctx context.Context, video *Video) (string, error) {
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	if err := s.insert(ctx, collVideos, video); err != nil {
		return "", fmt.Errorf("failed to insert video: %w", err)
	}
	return video.ID.Hex(), nil
}

func (s *MongoStore) VideosByUser(ctx context.Context, userID string) ([]Video, error) {
	cursor, err := s.db.Collection(collVideos).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	var videos []Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

func (s *MongoStore) CreateEmotionLog(ctx context.Context, entry *EmotionLog) (string, error) {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	if err := s.insert(ctx, collEmotionLogs, entry); err != nil {
		return "", fmt.Errorf("failed to insert emotion log: %w", err)
	}
	return entry.ID.Hex(), nil
}

func (s *MongoStore) EmotionLogsByUser(ctx context.Context, userID string) ([]EmotionLog, error) {
	cursor, err := s.db.Collection(collEmotionLogs).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion logs: %w", err)
	}
	var logs []EmotionLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode emotion logs: %w", err)
	}
	return logs, nil
}

func (s *MongoStore) CreateChatMessage(ctx context.Context, msg *ChatMessage) (string, error) {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	if err := s.insert(ctx, collChatMessages, msg); err != nil {
		return "", fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg.ID.Hex(), nil
}

func (s *MongoStore) RecentChatMessages(ctx context.Context, userID string, limit int64) ([]ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.db.Collection(collChatMessages).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	var messages []ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}
	return messages, nil
}
