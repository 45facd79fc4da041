package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/academy-cms/handlers"
	"github.com/luminedge/academy-cms/internal/content"
	"github.com/luminedge/academy-cms/internal/content/store"
	"github.com/luminedge/academy-cms/internal/database"
)

// Standalone content API without auth, for local editing and tests. Uses
// MongoDB when MONGODB_URI is set and an in-memory store otherwise.
func main() {
	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5012"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var st content.Store
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		client, err := database.ConnectMongo(context.Background(), uri, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v), using in-memory store", err)
			st = store.NewMemoryStore()
		} else {
			col := client.Database(os.Getenv("MONGODB_DATABASE")).Collection("content")
			st = store.NewMongoStore(col)
		}
	} else {
		st = store.NewMemoryStore()
	}

	accessor := content.NewAccessor(st, content.NewMemoryCache(content.DefaultCacheTTL))
	saver := content.NewSaver(st, accessor)
	handlers.NewContentHandler(accessor, saver, nil).Register(r.Group("/api/v1"))

	log.Printf("content service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
