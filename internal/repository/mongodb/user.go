package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	Role        string             `bson:"role"`
	Name        string             `bson:"name"`
	Photo       string             `bson:"photo,omitempty"`
	HREmail     *string            `bson:"hrEmail,omitempty"`
	CompanyName *string            `bson:"companyName,omitempty"`
	CompanyLogo *string            `bson:"companyLogo,omitempty"`
	JoinedDate  *time.Time         `bson:"joinedDate,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d userDocument) toEntity() user.User {
	return user.User{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Role:        user.Role(d.Role),
		Name:        d.Name,
		Photo:       d.Photo,
		HREmail:     d.HREmail,
		CompanyName: d.CompanyName,
		CompanyLogo: d.CompanyLogo,
		JoinedDate:  d.JoinedDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *database.MongoDB) user.UserRepository {
	return &userRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, bool, error) {
	now := time.Now().UTC()
	doc := userDocument{
		Email:       newUser.Email,
		Role:        string(newUser.Role),
		Name:        newUser.Name,
		Photo:       newUser.Photo,
		HREmail:     newUser.HREmail,
		CompanyName: newUser.CompanyName,
		CompanyLogo: newUser.CompanyLogo,
		JoinedDate:  newUser.JoinedDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": newUser.Email},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return user.User{}, false, database.Unavailable("upsert user", err)
	}

	stored, getErr := r.GetByEmail(ctx, newUser.Email)
	if getErr != nil {
		return user.User{}, false, getErr
	}
	return stored, err == nil && res.UpsertedCount == 1, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M, op string) (user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Unavailable(op, err)
	}
	return doc.toEntity(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "find user by email")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "find user by id")
}

func (r *userRepository) UpdateProfile(ctx context.Context, email string, req user.UpdateProfileRequest) (user.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Photo != nil {
		set["photo"] = *req.Photo
	}

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Unavailable("update user profile", err)
	}
	return doc.toEntity(), nil
}

func userFilter(f user.Filter) bson.M {
	filter := bson.M{}
	if f.HREmail != nil {
		filter["hrEmail"] = *f.HREmail
	}
	if f.Unaffiliated {
		filter["hrEmail"] = bson.M{"$exists": false}
	}
	if f.Role != nil {
		filter["role"] = string(*f.Role)
	}
	return filter
}

func (r *userRepository) List(ctx context.Context, f user.Filter) ([]user.User, error) {
	cursor, err := r.coll.Find(ctx, userFilter(f), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, database.Unavailable("find users", err)
	}
	defer cursor.Close(ctx)

	users := make([]user.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, database.Unavailable("decode user", err)
		}
		users = append(users, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, database.Unavailable("find users", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, f user.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, userFilter(f))
	if err != nil {
		return 0, database.Unavailable("count users", err)
	}
	return n, nil
}

func (r *userRepository) Affiliate(ctx context.Context, ids []string, aff user.Affiliation) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return 0, nil
	}

	joined := aff.JoinedDate
	if joined.IsZero() {
		joined = time.Now().UTC()
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"_id":     bson.M{"$in": oids},
			"role":    string(user.RoleEmployee),
			"hrEmail": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"hrEmail":     aff.HREmail,
			"companyName": aff.CompanyName,
			"companyLogo": aff.CompanyLogo,
			"joinedDate":  joined,
			"updatedAt":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, database.Unavailable("affiliate users", err)
	}
	return res.ModifiedCount, nil
}

func (r *userRepository) Unaffiliate(ctx context.Context, id string, hrEmail string) error {
	oid, ok := objectID(id)
	if !ok {
		return user.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "hrEmail": hrEmail},
		bson.M{
			"$unset": bson.M{"hrEmail": "", "companyName": "", "companyLogo": "", "joinedDate": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return database.Unavailable("unaffiliate user", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
