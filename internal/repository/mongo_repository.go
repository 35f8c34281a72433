package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/incident-service/internal/domain"
)

const (
	usersCollection     = "users"
	incidentsCollection = "incidents"
)

type userDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Username        string             `bson:"username"`
	Password        string             `bson:"password"`
	Email           string             `bson:"email"`
	Role            string             `bson:"role"`
	Specializations []string           `bson:"specializations,omitempty"`
}

type incidentDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	CreationDate time.Time          `bson:"creationDate"`
	Status       string             `bson:"status"`
	Priority     int                `bson:"priority"`
	Category     string             `bson:"category"`
	ReporterID   string             `bson:"reporterId,omitempty"`
	TechnicianID string             `bson:"assignedTechnicianId,omitempty"`
}

// NewMongoStore builds repositories over a Mongo database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:     NewMongoUserRepository(db.Collection(usersCollection)),
		Incidents: NewMongoIncidentRepository(db.Collection(incidentsCollection)),
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
	}
}

// EnsureMongoIndexes creates the unique username index and the incident
// lookup indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = db.Collection(incidentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "reporterId", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTechnicianId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create incidents indexes: %w", err)
	}
	return nil
}

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository.
func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := toUserDocument(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	objectID, ok := parseObjectID(user.ID)
	if !ok {
		return ErrNotFound
	}
	doc := toUserDocument(user)
	doc.ID = objectID
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": objectID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	objectID, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	objectID, ok := parseObjectID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	result := make([]domain.User, 0, len(docs))
	for i := range docs {
		result = append(result, *docs[i].toDomain())
	}
	return result, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return doc.toDomain(), nil
}

// MongoIncidentRepository implements IncidentRepository for MongoDB.
type MongoIncidentRepository struct {
	coll *mongo.Collection
}

// NewMongoIncidentRepository creates a new MongoIncidentRepository.
func NewMongoIncidentRepository(coll *mongo.Collection) *MongoIncidentRepository {
	return &MongoIncidentRepository{coll: coll}
}

func (r *MongoIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	doc := toIncidentDocument(incident)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error inserting incident: %w", err)
	}
	incident.ID = doc.ID.Hex()
	return nil
}

func (r *MongoIncidentRepository) Save(ctx context.Context, incident *domain.Incident) error {
	objectID, ok := parseObjectID(incident.ID)
	if !ok {
		return ErrNotFound
	}
	doc := toIncidentDocument(incident)
	doc.ID = objectID
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": objectID}, doc)
	if err != nil {
		return fmt.Errorf("error saving incident: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoIncidentRepository) Exists(ctx context.Context, id string) (bool, error) {
	objectID, ok := parseObjectID(id)
	if !ok {
		return false, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting incidents: %w", err)
	}
	return count > 0, nil
}

func (r *MongoIncidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	objectID, ok := parseObjectID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc incidentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding incident: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoIncidentRepository) Delete(ctx context.Context, id string) error {
	objectID, ok := parseObjectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("error deleting incident: %w", err)
	}
	return nil
}

func (r *MongoIncidentRepository) List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		query["priority"] = *filter.Priority
	}
	if filter.Category != nil {
		query["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(string(*filter.Category)) + "$", Options: "i"}
	}
	if filter.TechnicianID != nil {
		query["assignedTechnicianId"] = *filter.TechnicianID
	}
	if filter.ReporterID != nil {
		query["reporterId"] = *filter.ReporterID
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing incidents: %w", err)
	}
	var docs []incidentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding incidents: %w", err)
	}
	result := make([]domain.Incident, 0, len(docs))
	for i := range docs {
		result = append(result, *docs[i].toDomain())
	}
	return result, nil
}

func parseObjectID(id string) (primitive.ObjectID, bool) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objectID, true
}

func toUserDocument(user *domain.User) userDocument {
	return userDocument{
		Username:        user.Username,
		Password:        user.Password,
		Email:           user.Email,
		Role:            string(user.Role),
		Specializations: specializationStrings(user.Specializations),
	}
}

func (d *userDocument) toDomain() *domain.User {
	user := &domain.User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Password: d.Password,
		Email:    d.Email,
		Role:     domain.Role(d.Role),
	}
	if user.Role == domain.RoleTechnician {
		user.Specializations = specializationsFromStrings(d.Specializations)
		if user.Specializations == nil {
			user.Specializations = []domain.Specialization{}
		}
	}
	return user
}

func toIncidentDocument(incident *domain.Incident) incidentDocument {
	return incidentDocument{
		Title:        incident.Title,
		Description:  incident.Description,
		CreationDate: incident.CreationDate,
		Status:       string(incident.Status),
		Priority:     incident.Priority,
		Category:     string(incident.Category),
		ReporterID:   incident.ReporterID(),
		TechnicianID: incident.TechnicianID(),
	}
}

func (d *incidentDocument) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:                 d.ID.Hex(),
		Title:              d.Title,
		Description:        d.Description,
		CreationDate:       d.CreationDate,
		Status:             domain.IncidentStatus(d.Status),
		Priority:           d.Priority,
		Category:           domain.Category(d.Category),
		Reporter:           refFromID(&d.ReporterID),
		AssignedTechnician: refFromID(&d.TechnicianID),
	}
}
