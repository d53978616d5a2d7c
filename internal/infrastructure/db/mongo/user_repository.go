package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/internal/core/ports"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// mongoUser is the persistence shape; kept separate from domain.User so the
// stored document layout is not coupled to the JSON contract.
type mongoUser struct {
	ID                 string    `bson:"_id"`
	FirstName          string    `bson:"first_name"`
	LastName           string    `bson:"last_name"`
	Email              string    `bson:"email"`
	RegistrationNumber string    `bson:"registration_number"`
	DateOfBirth        time.Time `bson:"date_of_birth"`
	Role               string    `bson:"role"`
	Course             string    `bson:"course,omitempty"`
	Status             string    `bson:"status,omitempty"`
	PasswordHash       string    `bson:"password_hash"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// sortFields maps API sort keys to document fields. "name" is special-cased
// as last-name-then-first-name ordering below.
var sortFields = map[string]string{
	"email":              "email",
	"registrationNumber": "registration_number",
	"dateOfBirth":        "date_of_birth",
	"role":               "role",
	"createdAt":          "created_at",
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromDoc(&mu), nil
}

// List returns a page of users matching filter plus the total match count.
// Search is a case-insensitive partial match on first name, last name,
// email, and registration number.
func (r *UserRepository) List(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = bson.A{
			bson.M{"first_name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"last_name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"registration_number": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(filter.SortBy, filter.SortOrder)).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, fromDoc(&mu))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields ports.UpdateUserFields) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.FirstName != nil {
		set["first_name"] = *fields.FirstName
	}
	if fields.LastName != nil {
		set["last_name"] = *fields.LastName
	}
	if fields.Email != nil {
		set["email"] = *fields.Email
	}
	if fields.DateOfBirth != nil {
		set["date_of_birth"] = *fields.DateOfBirth
	}
	if fields.Role != nil {
		set["role"] = *fields.Role
	}
	if fields.Course != nil {
		set["course"] = *fields.Course
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return fromDoc(&mu), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the repository relies on. The unique
// email index backs the email-uniqueness invariant at the storage level.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "registration_number", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func sortSpec(sortBy, sortOrder string) bson.D {
	dir := -1
	if sortOrder == "asc" {
		dir = 1
	}
	if sortBy == "name" {
		return bson.D{{Key: "first_name", Value: dir}, {Key: "last_name", Value: dir}}
	}
	field, ok := sortFields[sortBy]
	if !ok {
		// default sort: newest first
		return bson.D{{Key: "created_at", Value: -1}}
	}
	return bson.D{{Key: field, Value: dir}}
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		RegistrationNumber: u.RegistrationNumber,
		DateOfBirth:        u.DateOfBirth,
		Role:               u.Role,
		Course:             u.Course,
		Status:             u.Status,
		PasswordHash:       u.PasswordHash,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func fromDoc(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:                 mu.ID,
		FirstName:          mu.FirstName,
		LastName:           mu.LastName,
		Email:              mu.Email,
		RegistrationNumber: mu.RegistrationNumber,
		DateOfBirth:        mu.DateOfBirth.UTC(),
		Role:               mu.Role,
		Course:             mu.Course,
		Status:             mu.Status,
		PasswordHash:       mu.PasswordHash,
		CreatedAt:          mu.CreatedAt.UTC(),
		UpdatedAt:          mu.UpdatedAt.UTC(),
	}
}
