// server/internal/database/mongo.go
package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect abre la conexión a MongoDB y verifica con un ping.
func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Conectado a MongoDB")
	return client, nil
}

// EnsureIndexes crea los índices únicos que el resto del código asume.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unico := options.Index().SetUnique(true)

	indices := []struct {
		coleccion string
		modelo    mongo.IndexModel
	}{
		{"presupuestos", mongo.IndexModel{Keys: bson.D{{Key: "referencia", Value: 1}}, Options: unico}},
		{"aceites", mongo.IndexModel{Keys: bson.D{{Key: "sku", Value: 1}}, Options: unico}},
		{"talleres", mongo.IndexModel{Keys: bson.D{{Key: "codigo", Value: 1}}, Options: unico}},
		{"presupuestos", mongo.IndexModel{Keys: bson.D{{Key: "estado", Value: 1}}}},
		{"presupuestos", mongo.IndexModel{Keys: bson.D{{Key: "taller", Value: 1}}}},
	}

	for _, idx := range indices {
		if _, err := db.Collection(idx.coleccion).Indexes().CreateOne(ctx, idx.modelo); err != nil {
			return err
		}
	}
	return nil
}
