package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"widgetstore/internal/models"
)

// Products and orders share one collection and are told apart by "type".

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database, collection string) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(collection)}
}

func (m *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.Type = models.DocumentTypeProduct
	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (m *mongoProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product

	filter := bson.M{"_id": id, "type": models.DocumentTypeProduct}
	if err := m.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (m *mongoProductRepository) List(ctx context.Context, query ProductQuery) ([]models.Product, int64, error) {
	filter := bson.M{"type": models.DocumentTypeProduct}
	if query.AvailableOnly {
		filter["isAvailable"] = true
	}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(query.Search), "$options": "i"}
	}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if query.Limit > 0 {
		findOptions.SetSkip(query.Skip).SetLimit(query.Limit)
	}

	cursor, err := m.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, total, nil
}

func (m *mongoProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	product.Type = models.DocumentTypeProduct

	filter := bson.M{"_id": product.ID, "type": models.DocumentTypeProduct}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, filter, product, opts); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database, collection string) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection(collection)}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.Type = models.DocumentTypeOrder
	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	if err := m.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	return m.findOne(ctx, bson.M{"_id": id, "type": models.DocumentTypeOrder})
}

func (m *mongoOrderRepository) GetForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	return m.findOne(ctx, bson.M{"_id": id, "userId": userID, "type": models.DocumentTypeOrder})
}

func (m *mongoOrderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Order, error) {
	cursor, err := m.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	filter := bson.M{"type": models.DocumentTypeOrder, "userId": userID}
	return m.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
}

func (m *mongoOrderRepository) Upsert(ctx context.Context, order *models.Order) error {
	order.Type = models.DocumentTypeOrder

	filter := bson.M{"_id": order.ID, "type": models.DocumentTypeOrder}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, filter, order, opts); err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}
	return nil
}

// ListAwaitingShipment returns Processed orders that have no shipping date.
// A null shippingDate counts as unset.
func (m *mongoOrderRepository) ListAwaitingShipment(ctx context.Context) ([]models.Order, error) {
	filter := bson.M{
		"type":         models.DocumentTypeOrder,
		"status":       models.OrderStatusProcessed,
		"shippingDate": nil,
	}
	return m.find(ctx, filter)
}

func (m *mongoOrderRepository) ListWithMetrics(ctx context.Context) ([]models.Order, error) {
	filter := bson.M{
		"type":    models.DocumentTypeOrder,
		"metrics": bson.M{"$ne": nil},
	}
	return m.find(ctx, filter)
}
