package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/easybill/easybill/internal/config"
	"github.com/easybill/easybill/internal/database"
	"github.com/easybill/easybill/internal/handler"
	"github.com/easybill/easybill/internal/license"
	"github.com/easybill/easybill/internal/printing"
	"github.com/easybill/easybill/internal/repository"
	"github.com/easybill/easybill/internal/router"
	"github.com/easybill/easybill/internal/service"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.InitSchema(ctx, db); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	spooler, err := printing.NewSpooler(cfg.SpoolDir)
	if err != nil {
		log.Fatalf("init spool dir: %v", err)
	}
	validator := license.NewValidator(cfg.LicensePath, cfg.LicenseKey)

	tables := repository.NewTableRepo(db)
	categories := repository.NewCategoryRepo(db)
	menu := repository.NewMenuRepo(db)
	settings := repository.NewSettingsRepo(db)
	orders := repository.NewOrderRepo(db)
	reports := repository.NewReportRepo(db)

	alloc := service.NewAllocator(orders, settings)
	orderSvc := service.NewOrderService(db, orders, tables, alloc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS()) // mobile companion app calls from a LAN origin

	router.RegisterRoutes(e,
		handler.NewBridgeHandler(version),
		handler.NewLicenseHandler(validator),
	)
	router.RegisterAPI(e, validator,
		handler.NewOrdersHandler(orderSvc, tables, menu, categories, settings, spooler),
		handler.NewTablesHandler(tables),
		handler.NewMenuHandler(categories, menu),
		handler.NewSettingsHandler(settings),
		handler.NewReportsHandler(reports),
		handler.NewPrintHandler(orders, tables, categories, settings, spooler),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
