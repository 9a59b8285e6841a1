// Command seed loads the demo catalog into Postgres. Safe to run repeatedly,
// existing products are updated in place by name.
package main

import (
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/database"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/logger"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

var catalog = []models.Product{
	{
		Name:        "Neural Link V1",
		Description: "Next-gen neural interface for seamless device control.",
		Price:       299,
		Stock:       50,
	},
	{
		Name:        "Cyber Glass Pro",
		Description: "Augmented reality glasses with a holographic display.",
		Price:       999,
		Stock:       30,
	},
	{
		Name:        "Void Runner X",
		Description: "Self-lacing sneakers with adaptive cushioning.",
		Price:       150,
		Stock:       100,
	},
	{
		Name:        "Titanium Shell Laptop",
		Description: "Ultra-light laptop with a rugged titanium chassis.",
		Price:       2499,
		Stock:       15,
	},
	{
		Name:        "Nebula Watch",
		Description: "Smartwatch that projects notifications onto your wrist.",
		Price:       499,
		Stock:       75,
	},
}

func main() {
	zlog, err := logger.New("development")
	if err != nil {
		log.Fatal("[Seed] Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	db, err := database.ConnectPostgres(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		zlog.Fatal("Database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "price", "stock"}),
	}).Create(&catalog).Error
	if err != nil {
		zlog.Fatal("Seeding failed", zap.Error(err))
	}

	zlog.Info("Catalog seeded", zap.Int("products", len(catalog)))
}
