package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type groupDoc struct {
	ID        string   `bson:"_id"`
	Name      string   `bson:"name"`
	Members   []string `bson:"members"`
	CreatedAt int64    `bson:"created_at"`
}

func (d *groupDoc) model() *models.Group {
	members := d.Members
	if members == nil {
		members = []string{}
	}
	return &models.Group{ID: d.ID, Name: d.Name, Members: members, CreatedAt: d.CreatedAt}
}

func (s *Store) groups() *mongo.Collection {
	return s.db.Collection(groupsCollection)
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	_, err := s.groups().InsertOne(ctx, groupDoc{
		ID:        group.ID,
		Name:      group.Name,
		Members:   group.Members,
		CreatedAt: group.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var doc groupDoc
	err := s.groups().FindOne(ctx, bson.M{"_id": groupID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	cur, err := s.groups().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}
	groups := make([]*models.Group, 0, len(docs))
	for i := range docs {
		groups = append(groups, docs[i].model())
	}
	return groups, nil
}
