package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/tendant/simple-files/pkg/simplefiles"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "files"

// maxInsertAttempts bounds retries on id collisions.
const maxInsertAttempts = 3

// fileDocument is the stored shape of a file record.
type fileDocument struct {
	ID         string             `bson:"_id"`
	Seq        primitive.ObjectID `bson:"seq"` // insertion order
	OwnerID    string             `bson:"owner_id"`
	Name       string             `bson:"name"`
	Type       string             `bson:"type"`
	ParentID   string             `bson:"parent_id"` // "0" at the root
	IsPublic   bool               `bson:"is_public"`
	ContentKey string             `bson:"content_key,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *fileDocument) toFile() (*simplefiles.File, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt file id %q: %w", d.ID, err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("file %s has corrupt owner_id: %w", d.ID, err)
	}
	parent, err := simplefiles.ParseParent(d.ParentID)
	if err != nil {
		return nil, fmt.Errorf("file %s has corrupt parent_id: %w", d.ID, err)
	}
	return &simplefiles.File{
		ID:         id,
		OwnerID:    ownerID,
		Name:       d.Name,
		Kind:       simplefiles.Kind(d.Type),
		Parent:     parent,
		IsPublic:   d.IsPublic,
		ContentKey: d.ContentKey,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

var _ simplefiles.Repository = (*Repository)(nil)

// Repository implements simplefiles.Repository on a MongoDB collection
type Repository struct {
	collection *mongo.Collection
}

// New creates a repository backed by collection.
func New(collection *mongo.Collection) *Repository {
	return &Repository{collection: collection}
}

// NewWithDatabase creates a repository on the default collection of db.
func NewWithDatabase(db *mongo.Database) *Repository {
	return New(db.Collection(DefaultCollection))
}

// EnsureIndexes creates the index used by hierarchical listings.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "parent_id", Value: 1},
			{Key: "seq", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create files index: %w", err)
	}
	return nil
}

func (r *Repository) InsertFile(ctx context.Context, file *simplefiles.File) (uuid.UUID, error) {
	createdAt := file.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := file.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	doc := fileDocument{
		OwnerID:    file.OwnerID.String(),
		Name:       file.Name,
		Type:       string(file.Kind),
		ParentID:   file.Parent.String(),
		IsPublic:   file.IsPublic,
		ContentKey: file.ContentKey,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	var id uuid.UUID
	err := retry.Do(
		func() error {
			id = uuid.New()
			doc.ID = id.String()
			doc.Seq = primitive.NewObjectID()
			_, err := r.collection.InsertOne(ctx, doc)
			return err
		},
		retry.Attempts(maxInsertAttempts),
		retry.RetryIf(mongo.IsDuplicateKeyError),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return id, nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplefiles.File, error) {
	var doc fileDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, simplefiles.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return doc.toFile()
}

func (r *Repository) ListChildren(ctx context.Context, params simplefiles.ListChildrenParams) ([]*simplefiles.File, error) {
	filter := bson.M{
		"owner_id":  params.OwnerID.String(),
		"parent_id": params.Parent.String(),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(simplefiles.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]*simplefiles.File, 0, simplefiles.PageSize)
	for cursor.Next(ctx) {
		var doc fileDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		file, err := doc.toFile()
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	return files, nil
}

func (r *Repository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) (*simplefiles.File, error) {
	// Only a real change touches updated_at
	filter := bson.M{"_id": id.String(), "is_public": bson.M{"$ne": isPublic}}
	update := bson.M{"$set": bson.M{"is_public": isPublic, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc fileDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.GetFile(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	return doc.toFile()
}
