package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cpms/cpms-api/internal/core/domain"
)

type ClientRepository struct {
	coll     *mongo.Collection
	projects *mongo.Collection
	ids      sequence
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		coll:     db.Collection(collectionClients),
		projects: db.Collection(collectionProjects),
		ids:      newSequence(db, collectionClients),
	}
}

type mongoClient struct {
	ID          int64  `bson:"_id"`
	Name        string `bson:"name"`
	Email       string `bson:"email"`
	Phone       string `bson:"phone"`
	CompanyName string `bson:"company_name"`
	OwnerID     int64  `bson:"owner_id"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
}

func (mc mongoClient) toDomain() *domain.Client {
	return &domain.Client{
		ID:          mc.ID,
		Name:        mc.Name,
		Email:       mc.Email,
		Phone:       mc.Phone,
		CompanyName: mc.CompanyName,
		OwnerID:     mc.OwnerID,
		CreatedAt:   unixToTime(mc.CreatedAt),
		UpdatedAt:   unixToTime(mc.UpdatedAt),
	}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoClient{
		ID:          id,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CompanyName: c.CompanyName,
		OwnerID:     c.OwnerID,
		CreatedAt:   timeToUnix(c.CreatedAt),
		UpdatedAt:   timeToUnix(c.UpdatedAt),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoClient
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.ResourceClient, id)
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ClientRepository) List(ctx context.Context, ownerID int64) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if ownerID != 0 {
		filter["owner_id"] = ownerID
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoClient
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	clients := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		clients = append(clients, d.toDomain())
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":         c.Name,
		"email":        c.Email,
		"phone":        c.Phone,
		"company_name": c.CompanyName,
		"updated_at":   timeToUnix(c.UpdatedAt),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.NotFound(domain.ResourceClient, c.ID)
	}
	updated := *c
	return &updated, nil
}

// Delete removes the client, then its projects. ProjectRepository.Create
// re-checks the client after inserting, so the order closes the window for
// orphans.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound(domain.ResourceClient, id)
	}
	if _, err := r.projects.DeleteMany(ctx, bson.M{"client_id": id}); err != nil {
		return fmt.Errorf("delete client projects: %w", err)
	}
	return nil
}
