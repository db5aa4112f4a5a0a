package main

import (
	"fmt"
	"log"

	"consumable-app/config"
	"consumable-app/controllers/idgen"
	"consumable-app/database"
	"consumable-app/logger"
	"consumable-app/mailer"
	"consumable-app/pdfgen"
	"consumable-app/repositories"
	"consumable-app/routes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	if err := config.InitDirectories(); err != nil {
		log.Fatalf("Failed to create upload directories: %v", err)
	}

	zlog, err := logger.New(config.LogLevel, config.LogFormat)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open()
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("Failed to auto migrate", zap.Error(err))
	}
	database.Seed(db)

	idgen.Init()

	pdfGenerator := &pdfgen.Generator{
		FontPath:       config.PDFFontPath,
		CompanyName:    config.CompanyName,
		DepartmentName: config.DepartmentName,
	}
	smtpMailer := &mailer.Mailer{
		Host:     config.SMTPHost,
		Port:     config.SMTPPort,
		User:     config.SMTPUser,
		Password: config.SMTPPassword,
		From:     config.SMTPFrom,
		FromName: config.SMTPFromName,
		UseTLS:   config.SMTPUseTLS,
	}

	stockRepo := repositories.NewStockRepository(db, zlog)
	orderRepo := repositories.NewOrderRepository(db)
	dispatchRepo := repositories.NewDispatchRepository(db, zlog, pdfGenerator, config.PDFFolder)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupConsumableRoutes(app, db)
	routes.SetupInventoryRoutes(app, db, stockRepo)
	routes.SetupOrderRoutes(app, orderRepo)
	routes.SetupDispatchRoutes(app, db, dispatchRepo, smtpMailer)
	routes.SetupSupplierRoutes(app, db)
	routes.SetupEmployeeRoutes(app, db)
	routes.SetupUserRoutes(app, db)
	routes.SetupHistoryRoutes(app, db)

	app.Static("/uploads", config.UploadFolder)

	port := config.APP_PORT
	zlog.Info("Server starting", zap.String("port", port))
	fmt.Println("🚀 Server running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
}
