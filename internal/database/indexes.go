package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection   = "users"
	ReviewsCollection = "reviews"
)

// EnsureDocumentIndexes creates the indexes the shared Product/Order
// collection relies on. Every query filters on type first.
func EnsureDocumentIndexes(db *mongo.Database, collection string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(collection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}},
			Options: options.Index().SetName("type_user_orderDate"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "shippingDate", Value: 1}},
			Options: options.Index().SetName("type_status_shippingDate"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("type_category_createdAt"),
		},
	}

	log.Println("EnsureDocumentIndexes: creating indexes on", collection)
	names, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureDocumentIndexes: index error:", err)
		return err
	}
	log.Println("EnsureDocumentIndexes: indexes ready:", names)
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(UsersCollection).Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(ReviewsCollection).Indexes()

	productIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "reviewDate", Value: -1}},
		Options: options.Index().SetName("productId_reviewDate"),
	}

	log.Println("EnsureReviewIndexes: creating productId_reviewDate index")
	_, err := indexes.CreateOne(ctx, productIndex)
	if err != nil {
		log.Println("EnsureReviewIndexes: productId index error:", err)
		return err
	}
	log.Println("EnsureReviewIndexes: productId_reviewDate index created")
	return nil
}
