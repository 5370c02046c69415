package mongodb

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type assetDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	HREmail            string             `bson:"hrEmail"`
	ProductName        string             `bson:"productName"`
	ProductType        string             `bson:"productType"`
	ProductQuantity    int                `bson:"productQuantity"`
	AddedDate          time.Time          `bson:"addedDate"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
	AppliedAdjustments []string           `bson:"appliedAdjustments,omitempty"` // applied, not yet released
}

func (d assetDocument) toEntity() asset.Asset {
	return asset.Asset{
		ID:              d.ID.Hex(),
		HREmail:         d.HREmail,
		ProductName:     d.ProductName,
		ProductType:     asset.ProductType(d.ProductType),
		ProductQuantity: d.ProductQuantity,
		AddedDate:       d.AddedDate,
		UpdatedAt:       d.UpdatedAt,
	}
}

type assetRepository struct {
	coll *mongo.Collection
}

func NewAssetRepository(db *database.MongoDB) asset.AssetRepository {
	return &assetRepository{coll: db.Collection(database.AssetsCollection)}
}

func (r *assetRepository) Create(ctx context.Context, newAsset asset.Asset) (asset.Asset, error) {
	if newAsset.ProductQuantity < 0 {
		return asset.Asset{}, asset.ErrNegativeQuantity
	}

	now := time.Now().UTC()
	doc := assetDocument{
		ID:              primitive.NewObjectID(),
		HREmail:         newAsset.HREmail,
		ProductName:     newAsset.ProductName,
		ProductType:     string(newAsset.ProductType),
		ProductQuantity: newAsset.ProductQuantity,
		AddedDate:       now,
		UpdatedAt:       now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return asset.Asset{}, database.Unavailable("insert asset", err)
	}
	return doc.toEntity(), nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (asset.Asset, error) {
	oid, ok := objectID(id)
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}

	var doc assetDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		return asset.Asset{}, database.Unavailable("find asset", err)
	}
	return doc.toEntity(), nil
}

func (r *assetRepository) List(ctx context.Context, f asset.Filter) ([]asset.Asset, error) {
	filter := bson.M{}
	if f.HREmail != "" {
		filter["hrEmail"] = f.HREmail
	}
	if f.Search != "" {
		filter["productName"] = containsRegex(f.Search)
	}
	if f.ProductType != nil {
		filter["productType"] = string(*f.ProductType)
	}
	quantity := bson.M{}
	if f.OnlyAvailable {
		quantity["$gt"] = 0
	}
	if f.BelowQuantity != nil {
		quantity["$lt"] = *f.BelowQuantity
	}
	if len(quantity) > 0 {
		filter["productQuantity"] = quantity
	}

	sort := bson.D{{Key: "addedDate", Value: 1}, {Key: "_id", Value: 1}}
	if f.SortBy == asset.SortByQuantity {
		sort = append(bson.D{{Key: "productQuantity", Value: -1}}, sort...)
	}
	opts := options.Find().SetSort(sort)
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, database.Unavailable("find assets", err)
	}
	defer cursor.Close(ctx)

	assets := make([]asset.Asset, 0)
	for cursor.Next(ctx) {
		var doc assetDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, database.Unavailable("decode asset", err)
		}
		assets = append(assets, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, database.Unavailable("find assets", err)
	}
	return assets, nil
}

func (r *assetRepository) CountByType(ctx context.Context, hrEmail string) (map[asset.ProductType]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hrEmail": hrEmail}}},
		{{Key: "$group", Value: bson.M{"_id": "$productType", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, database.Unavailable("count assets by type", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[asset.ProductType]int64)
	for cursor.Next(ctx) {
		var row struct {
			Type  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, database.Unavailable("decode asset count", err)
		}
		counts[asset.ProductType(row.Type)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, database.Unavailable("count assets by type", err)
	}
	return counts, nil
}

func (r *assetRepository) Update(ctx context.Context, id string, patch asset.Patch) (asset.Asset, error) {
	oid, ok := objectID(id)
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	if patch.ProductQuantity != nil && *patch.ProductQuantity < 0 {
		return asset.Asset{}, asset.ErrNegativeQuantity
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.ProductName != nil {
		set["productName"] = *patch.ProductName
	}
	if patch.ProductType != nil {
		set["productType"] = string(*patch.ProductType)
	}
	if patch.ProductQuantity != nil {
		set["productQuantity"] = *patch.ProductQuantity
	}

	var doc assetDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		return asset.Asset{}, database.Unavailable("update asset", err)
	}
	return doc.toEntity(), nil
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return asset.ErrAssetNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return database.Unavailable("delete asset", err)
	}
	if res.DeletedCount == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

// AdjustQuantity checks the key, the stock guard and applies the change in
// one document update, so a replayed key is refused atomically.
func (r *assetRepository) AdjustQuantity(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	oid, ok := objectID(adj.AssetID)
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}

	filter := bson.M{"_id": oid, "productQuantity": bson.M{"$gte": -adj.Delta}}
	update := bson.M{
		"$inc": bson.M{"productQuantity": adj.Delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	if adj.Key != "" {
		filter["appliedAdjustments"] = bson.M{"$ne": adj.Key}
		update["$addToSet"] = bson.M{"appliedAdjustments": adj.Key}
	}

	var doc assetDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toEntity(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return asset.Asset{}, database.Unavailable("adjust asset quantity", err)
	}

	// No document matched: the asset is gone, the key was applied or the guard refused.
	var current assetDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"productQuantity": 1, "appliedAdjustments": 1}),
	).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		return asset.Asset{}, database.Unavailable("check asset exists", err)
	}
	if adj.Key != "" && slices.Contains(current.AppliedAdjustments, adj.Key) {
		return asset.Asset{}, asset.ErrAdjustmentApplied
	}
	return asset.Asset{}, asset.ErrInventoryExhausted
}

func (r *assetRepository) ReleaseAdjustment(ctx context.Context, assetID string, key string) error {
	oid, ok := objectID(assetID)
	if !ok {
		return nil
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"appliedAdjustments": key}},
	)
	if err != nil {
		return database.Unavailable("release inventory adjustment", err)
	}
	return nil
}
