package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	Role           string             `bson:"role"`
	PhoneNumber    string             `bson:"phoneNumber,omitempty"`
	Address        string             `bson:"address,omitempty"`
	ProfilePicture string             `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		Password:       d.Password,
		Role:           entity.Role(d.Role),
		PhoneNumber:    d.PhoneNumber,
		Address:        d.Address,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// UserRepository stores users as documents; ids are ObjectIDs in hex form.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	return &UserRepository{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique email index and the default sort index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}

func (r *UserRepository) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.Password,
		Role:           string(u.Role),
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mapErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("mongo: unexpected inserted id type")
	}
	u.ID = oid.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	set := bson.M{
		"name":           u.Name,
		"email":          u.Email,
		"password":       u.Password,
		"role":           string(u.Role),
		"phoneNumber":    u.PhoneNumber,
		"address":        u.Address,
		"profilePicture": u.ProfilePicture,
		"updatedAt":      time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return mapErr(err)
	}
	*u = *doc.toEntity()
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if f.OutOfRange() {
		return []entity.User{}, total, nil
	}

	sortBy := f.SortBy
	if !repository.IsSortable(sortBy) {
		sortBy = repository.SortCreatedAt
	}
	order := 1
	if f.Desc {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = cur.Close(ctx) }()

	users := make([]entity.User, 0, f.Limit)
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		users = append(users, *doc.toEntity())
	}
	return users, total, cur.Err()
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
