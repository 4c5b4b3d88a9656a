package storage

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	DB *mongo.Database

	Users      *mongo.Collection
	Hosts      *mongo.Collection
	Properties *mongo.Collection
	Bookings   *mongo.Collection
	Reviews    *mongo.Collection
)

func connectToDB() *mongo.Database {
	uri := os.Getenv("DB_URI")
	if uri == "" {
		log.Panic("DB_URI environment variable is required")
	}

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "abodex"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Panic("error connecting to db: " + err.Error())
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Panic("error pinging db: " + err.Error())
	}

	DB = client.Database(dbName)
	return DB
}

func ensureIndexes(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	db.Collection("hosts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	db.Collection("properties").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "address.location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "hostId", Value: 1}}},
	})
	db.Collection("bookings").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	// One review per booking, enforced by the store.
	db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bookingId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

func InitializeDB() *mongo.Database {
	db := connectToDB()
	ensureIndexes(db)

	Users = db.Collection("users")
	Hosts = db.Collection("hosts")
	Properties = db.Collection("properties")
	Bookings = db.Collection("bookings")
	Reviews = db.Collection("reviews")

	return db
}
