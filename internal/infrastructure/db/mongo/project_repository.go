package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

type ProjectRepository struct {
	coll    *mongo.Collection
	clients *mongo.Collection
	ids     sequence
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		coll:    db.Collection(collectionProjects),
		clients: db.Collection(collectionClients),
		ids:     newSequence(db, collectionProjects),
	}
}

type mongoProject struct {
	ID          int64      `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	StartDate   *time.Time `bson:"start_date,omitempty"`
	EndDate     *time.Time `bson:"end_date,omitempty"`
	Status      string     `bson:"status"`
	ClientID    int64      `bson:"client_id"`
	OwnerID     int64      `bson:"owner_id"`
	CreatedAt   int64      `bson:"created_at"`
	UpdatedAt   int64      `bson:"updated_at"`
}

func (mp mongoProject) toDomain(clientName string) *domain.Project {
	return &domain.Project{
		ID:          mp.ID,
		Title:       mp.Title,
		Description: mp.Description,
		StartDate:   utcPtr(mp.StartDate),
		EndDate:     utcPtr(mp.EndDate),
		Status:      domain.ProjectStatus(mp.Status),
		ClientID:    mp.ClientID,
		ClientName:  clientName,
		OwnerID:     mp.OwnerID,
		CreatedAt:   unixToTime(mp.CreatedAt),
		UpdatedAt:   unixToTime(mp.UpdatedAt),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoProject{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      string(p.Status),
		ClientID:    p.ClientID,
		OwnerID:     p.OwnerID,
		CreatedAt:   timeToUnix(p.CreatedAt),
		UpdatedAt:   timeToUnix(p.UpdatedAt),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}

	// No foreign keys here: a client deleted while the insert was in flight
	// must not keep the project.
	err = r.clients.FindOne(ctx, bson.M{"_id": p.ClientID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, derr := r.coll.DeleteOne(ctx, bson.M{"_id": id}); derr != nil {
			return nil, fmt.Errorf("roll back orphan project: %w", derr)
		}
		return nil, domain.NotFound(domain.ResourceClient, p.ClientID)
	}
	if err != nil {
		return nil, fmt.Errorf("check project client: %w", err)
	}
	return doc.toDomain(p.ClientName), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProject
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.ResourceProject, id)
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	names, err := r.clientNames(ctx, bson.M{"_id": mp.ClientID})
	if err != nil {
		return nil, err
	}
	return mp.toDomain(names[mp.ClientID]), nil
}

// List resolves an OwnerID filter to that owner's client ids first.
func (r *ProjectRepository) List(ctx context.Context, filter ports.ProjectFilter) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	clientFilter := bson.M{}
	if filter.OwnerID != 0 {
		clientFilter["owner_id"] = filter.OwnerID
	}
	if filter.ClientID != 0 {
		clientFilter["_id"] = filter.ClientID
	}
	names, err := r.clientNames(ctx, clientFilter)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*domain.Project{}, nil
	}

	ids := make([]int64, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}

	cursor, err := r.coll.Find(ctx,
		bson.M{"client_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProject
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	projects := make([]*domain.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.toDomain(names[d.ClientID]))
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"title":       p.Title,
		"description": p.Description,
		"status":      string(p.Status),
		"client_id":   p.ClientID,
		"updated_at":  timeToUnix(p.UpdatedAt),
	}
	unset := bson.M{}
	if p.StartDate != nil {
		set["start_date"] = *p.StartDate
	} else {
		unset["start_date"] = ""
	}
	if p.EndDate != nil {
		set["end_date"] = *p.EndDate
	} else {
		unset["end_date"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.NotFound(domain.ResourceProject, p.ID)
	}
	updated := *p
	return &updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound(domain.ResourceProject, id)
	}
	return nil
}

// clientNames maps the id of every client matching filter to its name.
func (r *ProjectRepository) clientNames(ctx context.Context, filter bson.M) (map[int64]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1})
	cursor, err := r.clients.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID   int64  `bson:"_id"`
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	names := make(map[int64]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
