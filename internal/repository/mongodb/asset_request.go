package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type requestDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	AssetID           string             `bson:"assetId"`
	HREmail           string             `bson:"hrEmail"`
	UserEmail         string             `bson:"userEmail"`
	UserName          string             `bson:"userName"`
	ProductName       string             `bson:"productName"`
	ProductType       string             `bson:"productType"`
	Status            string             `bson:"status"`
	Note              *string            `bson:"note,omitempty"`
	RequestDate       time.Time          `bson:"requestDate"`
	ApprovalDate      *time.Time         `bson:"approvalDate,omitempty"`
	ReturnDate        *time.Time         `bson:"returnDate,omitempty"`
	PendingAdjustment int                `bson:"pendingAdjustment"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (d requestDocument) toEntity() assetrequest.Request {
	return assetrequest.Request{
		ID:                d.ID.Hex(),
		AssetID:           d.AssetID,
		HREmail:           d.HREmail,
		UserEmail:         d.UserEmail,
		UserName:          d.UserName,
		ProductName:       d.ProductName,
		ProductType:       asset.ProductType(d.ProductType),
		Status:            assetrequest.Status(d.Status),
		Note:              d.Note,
		RequestDate:       d.RequestDate,
		ApprovalDate:      d.ApprovalDate,
		ReturnDate:        d.ReturnDate,
		PendingAdjustment: d.PendingAdjustment,
		UpdatedAt:         d.UpdatedAt,
	}
}

type requestRepository struct {
	coll *mongo.Collection
}

func NewRequestRepository(db *database.MongoDB) assetrequest.RequestRepository {
	return &requestRepository{coll: db.Collection(database.RequestsCollection)}
}

func (r *requestRepository) Create(ctx context.Context, newRequest assetrequest.Request) (assetrequest.Request, error) {
	now := time.Now().UTC()
	doc := requestDocument{
		ID:          primitive.NewObjectID(),
		AssetID:     newRequest.AssetID,
		HREmail:     newRequest.HREmail,
		UserEmail:   newRequest.UserEmail,
		UserName:    newRequest.UserName,
		ProductName: newRequest.ProductName,
		ProductType: string(newRequest.ProductType),
		Status:      string(newRequest.Status),
		Note:        newRequest.Note,
		RequestDate: newRequest.RequestDate,
		UpdatedAt:   now,
	}
	if doc.RequestDate.IsZero() {
		doc.RequestDate = now
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return assetrequest.Request{}, database.Unavailable("insert request", err)
	}
	return doc.toEntity(), nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (assetrequest.Request, error) {
	oid, ok := objectID(id)
	if !ok {
		return assetrequest.Request{}, assetrequest.ErrRequestNotFound
	}

	var doc requestDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return assetrequest.Request{}, assetrequest.ErrRequestNotFound
		}
		return assetrequest.Request{}, database.Unavailable("find request", err)
	}
	return doc.toEntity(), nil
}

func requestFilter(f assetrequest.Filter) bson.M {
	filter := bson.M{}
	if f.HREmail != "" {
		filter["hrEmail"] = f.HREmail
	}
	if f.UserEmail != "" {
		filter["userEmail"] = f.UserEmail
	}
	if f.RequesterSearch != "" {
		filter["$or"] = bson.A{
			bson.M{"userEmail": containsRegex(f.RequesterSearch)},
			bson.M{"userName": containsRegex(f.RequesterSearch)},
		}
	}
	if f.ProductSearch != "" {
		filter["productName"] = containsRegex(f.ProductSearch)
	}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}
	if f.ProductType != nil {
		filter["productType"] = string(*f.ProductType)
	}
	requestDate := bson.M{}
	if f.RequestedFrom != nil {
		requestDate["$gte"] = *f.RequestedFrom
	}
	if f.RequestedTo != nil {
		requestDate["$lt"] = *f.RequestedTo
	}
	if len(requestDate) > 0 {
		filter["requestDate"] = requestDate
	}
	return filter
}

func (r *requestRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]assetrequest.Request, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, database.Unavailable(op, err)
	}
	defer cursor.Close(ctx)

	requests := make([]assetrequest.Request, 0)
	for cursor.Next(ctx) {
		var doc requestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, database.Unavailable("decode request", err)
		}
		requests = append(requests, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, database.Unavailable(op, err)
	}
	return requests, nil
}

func (r *requestRepository) List(ctx context.Context, f assetrequest.Filter) ([]assetrequest.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return r.find(ctx, requestFilter(f), opts, "find requests")
}

func (r *requestRepository) Count(ctx context.Context, f assetrequest.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, requestFilter(f))
	if err != nil {
		return 0, database.Unavailable("count requests", err)
	}
	return n, nil
}

func adjustmentMatch(v int) interface{} {
	if v == 0 {
		// documents written before the marker existed have no field
		return bson.M{"$in": bson.A{0, nil}}
	}
	return v
}

func (r *requestRepository) Transition(ctx context.Context, t assetrequest.Transition) (assetrequest.Request, bool, error) {
	oid, ok := objectID(t.ID)
	if !ok {
		return assetrequest.Request{}, false, assetrequest.ErrRequestNotFound
	}

	filter := bson.M{"_id": oid, "status": string(t.From)}
	if t.MatchAdjustment != nil {
		filter["pendingAdjustment"] = adjustmentMatch(*t.MatchAdjustment)
	}

	set := bson.M{
		"status":            string(t.To),
		"pendingAdjustment": t.Adjustment,
		"updatedAt":         time.Now().UTC(),
	}
	update := bson.M{}
	if t.ResetApprovalDate {
		update["$unset"] = bson.M{"approvalDate": ""}
	} else if t.ApprovalDate != nil {
		set["approvalDate"] = *t.ApprovalDate
	}
	if t.ReturnDate != nil {
		set["returnDate"] = *t.ReturnDate
	}
	update["$set"] = set

	var doc requestDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toEntity(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return assetrequest.Request{}, false, database.Unavailable("transition request", err)
	}

	// Preconditions no longer hold; report the stored state.
	current, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return assetrequest.Request{}, false, err
	}
	return current, false, nil
}

func (r *requestRepository) DeletePending(ctx context.Context, id string, userEmail string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{
		"_id":       oid,
		"userEmail": userEmail,
		"status":    string(assetrequest.StatusPending),
	})
	if err != nil {
		return false, database.Unavailable("delete pending request", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *requestRepository) ClearPendingAdjustment(ctx context.Context, id string, expected int) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "pendingAdjustment": expected},
		bson.M{"$set": bson.M{"pendingAdjustment": 0, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, database.Unavailable("clear pending adjustment", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *requestRepository) ListPendingAdjustments(ctx context.Context, limit int) ([]assetrequest.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"pendingAdjustment": bson.M{"$exists": true, "$nin": bson.A{0, nil}}}
	return r.find(ctx, filter, opts, "find pending adjustments")
}

func (r *requestRepository) CountOutstanding(ctx context.Context, assetID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"assetId": assetID,
		"$or": bson.A{
			bson.M{"status": string(assetrequest.StatusPending)},
			bson.M{"status": string(assetrequest.StatusApproved), "productType": string(asset.ProductTypeReturnable)},
			bson.M{"pendingAdjustment": bson.M{"$exists": true, "$nin": bson.A{0, nil}}},
		},
	})
	if err != nil {
		return 0, database.Unavailable("count outstanding requests", err)
	}
	return n, nil
}
