package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"confmgr/internal/api"
	"confmgr/internal/api/handlers"
	"confmgr/internal/api/middleware"
	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/logger"
	"confmgr/internal/platform/audit"
	"confmgr/internal/platform/auth"
	"confmgr/internal/platform/config"
	"confmgr/internal/platform/database"
	"confmgr/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	roomRepo := repositories.NewRoomRepository(db)
	infraRepo := repositories.NewInfraRepository(db)
	accessStore := repositories.NewAccessStore(db)

	// Authorization engine. The catalog is fixed at startup; it only
	// changes through migrations.
	catalog, err := access.LoadCatalog(context.Background(), accessStore)
	if err != nil {
		log.Fatalf("Failed to load permission catalog: %v", err)
	}
	authorizer := access.NewAuthorizer(accessStore, catalog)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditor := audit.NewLogger(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc, cfg.Server)
	userHandler := handlers.NewUserHandler(userRepo)
	orgHandler := handlers.NewOrgHandler(orgRepo, authorizer.Members(), auditor)
	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo, authorizer.Members(), auditor)
	roleHandler := handlers.NewRoleHandler(roleRepo, authorizer.Members(), catalog, auditor)
	roomHandler := handlers.NewRoomHandler(roomRepo, roleRepo, groupRepo, userRepo, authorizer, auditor, cfg.Server)
	infraHandler := handlers.NewInfraHandler(infraRepo)
	auditHandler := handlers.NewAuditHandler(auditor, authorizer.Members())
	healthHandler := handlers.NewHealthHandler(db)
	metricsHandler := handlers.NewMetricsHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	tenantMiddleware := middleware.NewTenantMiddleware(orgRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	deps := &api.Dependencies{
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		OrgHandler:       orgHandler,
		GroupHandler:     groupHandler,
		RoleHandler:      roleHandler,
		RoomHandler:      roomHandler,
		InfraHandler:     infraHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		MetricsHandler:   metricsHandler,
		AuthMiddleware:   authMiddleware,
		TenantMiddleware: tenantMiddleware,
		RateLimiter:      rateLimiter,
		Authorizer:       authorizer,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
