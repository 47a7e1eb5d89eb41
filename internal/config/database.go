package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

type MongoDBConfig struct {
	URI      string
	Database string
}

func NewMongoDBConfig() *MongoDBConfig {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		log.Fatal("DB uri not set")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "smartscore"
	}
	return &MongoDBConfig{URI: uri, Database: dbName}
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, config *MongoDBConfig) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(config.URI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Println("Connected to MongoDB")

	db := client.Database(config.Database)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			EnsureIndexes(db)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Println("Closing MongoDB connection ...")
			return client.Disconnect(stopCtx)
		},
	})

	return &MongoDBClient{Client: client, Database: db}, db, nil
}

// EnsureIndexes creates the unique indexes the service depends on. The
// generated student ID index is the final authority for allocator
// uniqueness; the (student_id, class_id) index keeps a single result
// checker token record per pair.
func EnsureIndexes(db *mongo.Database) {
	UniqueGeneratedIDIndex(db.Collection("students"))
	UniqueTokenPairIndex(db.Collection("result_checker_tokens"))
	UniqueEmailIndex(db.Collection("users"))
}

func UniqueGeneratedIDIndex(collection *mongo.Collection) {
	indexmodel := mongo.IndexModel{
		Keys:    bson.M{"generated_id": 1},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, indexmodel)
	if err != nil {
		log.Fatal("Failed to create unique index on generated student ID:", err)
	}

	log.Println("Unique index on generated student ID created successfully")
}

func UniqueTokenPairIndex(collection *mongo.Collection) {
	indexmodel := mongo.IndexModel{
		Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "class_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, indexmodel)
	if err != nil {
		log.Fatal("Failed to create unique index on result checker token pair:", err)
	}

	log.Println("Unique index on (student_id, class_id) created successfully")
}

func UniqueEmailIndex(collection *mongo.Collection) {
	indexmodel := mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, indexmodel)
	if err != nil {
		log.Fatal("Failed to create unique index on user email:", err)
	}

	log.Println("Unique index on user email created successfully")
}

func (c *MongoDBClient) GetCollection(collectionName string) *mongo.Collection {
	return c.Database.Collection(collectionName)
}
