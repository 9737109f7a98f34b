package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/repair-desk/internal/auth"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/handlers"
	"github.com/ukydev/repair-desk/internal/jobs"
	mw "github.com/ukydev/repair-desk/internal/middleware"
	"github.com/ukydev/repair-desk/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("connected to MongoDB")

	database := client.Database(db.DatabaseName())
	jobCollection := &db.MongoJobCollection{Collection: database.Collection("jobs")}
	userCollection := &db.MongoUserCollection{Collection: database.Collection("users")}
	customerCollection := &db.MongoCustomerCollection{Collection: database.Collection("customers")}
	deviceCollection := &db.MongoDeviceCollection{Collection: database.Collection("devices")}
	notificationCollection := &db.MongoNotificationCollection{Collection: database.Collection("notifications")}
	counterCollection := &db.MongoCounterCollection{Collection: database.Collection("counters")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	hub := ws.NewHub(authService)

	jobService := jobs.NewService(
		jobCollection,
		userCollection,
		customerCollection,
		deviceCollection,
		notificationCollection,
		counterCollection,
		hub,
	)
	if err := jobService.EnsureCounters(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to seed counters")
	}

	authHandler := handlers.NewAuthHandler(authService, userCollection)
	jobHandler := handlers.NewJobHandler(jobService, jobCollection, userCollection, customerCollection, deviceCollection)
	userHandler := handlers.NewUserHandler(authService, userCollection)
	notificationHandler := handlers.NewNotificationHandler(notificationCollection)

	authMW := mw.NewAuthMiddleware(authService)
	rateLimiter := mw.NewRateLimitMiddleware()

	router := mux.NewRouter()
	router.Use(authMW.Authenticate)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.Use(rateLimiter.RateLimit(20, 60))
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)

	jobRouter := router.PathPrefix("/jobs").Subrouter()
	jobRouter.Handle("", authMW.Authorize(mw.OpJobsList)(http.HandlerFunc(jobHandler.List))).Methods(http.MethodGet)
	jobRouter.Handle("", authMW.Authorize(mw.OpJobsCreate)(http.HandlerFunc(jobHandler.Create))).Methods(http.MethodPost)
	jobRouter.Handle("/customer/{customerId}", authMW.Authorize(mw.OpJobsByCustomer)(http.HandlerFunc(jobHandler.ByCustomer))).Methods(http.MethodGet)
	jobRouter.Handle("/status/{status}", authMW.Authorize(mw.OpJobsByStatus)(http.HandlerFunc(jobHandler.ByStatus))).Methods(http.MethodGet)
	jobRouter.Handle("/{id}", authMW.Authorize(mw.OpJobsGet)(http.HandlerFunc(jobHandler.Get))).Methods(http.MethodGet)
	jobRouter.Handle("/{id}", authMW.Authorize(mw.OpJobsUpdate)(http.HandlerFunc(jobHandler.Update))).Methods(http.MethodPut)
	jobRouter.Handle("/{id}", authMW.Authorize(mw.OpJobsDelete)(http.HandlerFunc(jobHandler.Delete))).Methods(http.MethodDelete)
	jobRouter.Handle("/{id}/assign", authMW.Authorize(mw.OpJobsAssign)(http.HandlerFunc(jobHandler.Assign))).Methods(http.MethodPut)

	router.Handle("/users", authMW.Authorize(mw.OpUsersList)(http.HandlerFunc(userHandler.List))).Methods(http.MethodGet)
	router.Handle("/users", authMW.Authorize(mw.OpUsersCreate)(http.HandlerFunc(userHandler.Create))).Methods(http.MethodPost)

	notificationRouter := router.PathPrefix("/notifications").Subrouter()
	notificationRouter.HandleFunc("", notificationHandler.List).Methods(http.MethodGet)
	notificationRouter.HandleFunc("/unread", notificationHandler.Unread).Methods(http.MethodGet)
	notificationRouter.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods(http.MethodPut)
	notificationRouter.HandleFunc("/{id}", notificationHandler.Delete).Methods(http.MethodDelete)

	router.HandleFunc("/ws", hub.HandleWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, router))
}
