package main

import (
	"context"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/repair-desk/internal/auth"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/models"
)

// Seeds the default accounts and a couple of customers with devices so a
// fresh deployment has something to log into and assign.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	ctx := context.Background()
	defer client.Disconnect(ctx)

	database := client.Database(db.DatabaseName())
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	customers := &db.MongoCustomerCollection{Collection: database.Collection("customers")}
	devices := &db.MongoDeviceCollection{Collection: database.Collection("devices")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	seedUsers := []struct {
		name, email, phone, password string
		role                         models.Role
		skills                       []string
	}{
		{"System Admin", "admin@repairdesk.local", "", "admin123", models.RoleAdmin, nil},
		{"Maya Okafor", "manager@repairdesk.local", "555-0101", "manager123", models.RoleManager, nil},
		{"Dana Ruiz", "coordinator@repairdesk.local", "555-0102", "coord123", models.RoleCoordinator, nil},
		{"Tom Hale", "tech1@repairdesk.local", "555-0103", "tech123", models.RoleTechnician, []string{"screens", "batteries"}},
		{"Priya Nair", "tech2@repairdesk.local", "555-0104", "tech123", models.RoleTechnician, []string{"logic boards", "soldering"}},
		{"Parts Desk", "parts@repairdesk.local", "", "parts123", models.RolePartsTeam, nil},
	}

	for _, u := range seedUsers {
		if _, err := users.FindUserByEmail(ctx, u.email); err == nil {
			log.WithField("email", u.email).Info("user already present, skipping")
			continue
		}
		hash, err := authService.HashPassword(u.password)
		if err != nil {
			log.WithError(err).Fatal("failed to hash password")
		}
		if _, err := users.InsertUser(ctx, models.User{
			Name:     u.name,
			Email:    u.email,
			Phone:    u.phone,
			Password: hash,
			Role:     u.role,
			Skills:   u.skills,
		}); err != nil {
			log.WithError(err).WithField("email", u.email).Fatal("failed to insert user")
		}
		log.WithField("email", u.email).Info("seeded user")
	}

	customer, err := customers.InsertCustomer(ctx, models.Customer{
		Name:         "Acme Retail Ltd",
		ContactPhone: "555-0200",
		Email:        "it@acmeretail.example",
		Address:      "12 Market Street",
	})
	if err != nil {
		log.WithError(err).Fatal("failed to insert customer")
	}

	if _, err := devices.InsertDevice(ctx, models.Device{
		CustomerID:   customer.ID,
		SerialNumber: "SN-84412-A",
		DeviceType:   "POS Terminal",
		Make:         "Verifone",
		Model:        "V240m",
	}); err != nil {
		log.WithError(err).Fatal("failed to insert device")
	}

	log.Info("seed complete")
}
