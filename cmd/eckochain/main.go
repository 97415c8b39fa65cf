package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/kehm/eckochain-client/internal/config"
	"github.com/kehm/eckochain-client/internal/infrastructure/providers"
	"github.com/kehm/eckochain-client/internal/infrastructure/repository"
	"github.com/kehm/eckochain-client/internal/present/rest"
	"github.com/kehm/eckochain-client/internal/present/rest/middleware"
	"github.com/kehm/eckochain-client/internal/service"
	"github.com/kehm/eckochain-client/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := providers.SetupTraceProvider(ctx, conf.Server)
	if err != nil {
		slog.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracer(ctx)

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)
	ledger := providers.NewLedger(conf.Fabric)

	datasetRepo := repository.NewDatasetRepository(db)
	contractRepo := repository.NewContractRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	userRepo := repository.NewUserRepository(db)

	mailer := service.NewMailService(conf.Mail)

	contractUsecase := usecase.NewContractUsecase(
		ledger, datasetRepo, contractRepo, orgRepo, licenseRepo, userRepo,
		mailer, conf.Fabric.Chaincode, conf.Fabric.DefaultOrg,
	)
	datasetUsecase := usecase.NewDatasetUsecase(
		ledger, datasetRepo, contractRepo, orgRepo, userRepo,
		contractUsecase, conf.Fabric.Chaincode, conf.Fabric.DefaultOrg,
		conf.Server.DatasetLink,
	)
	cacheUsecase := usecase.NewCacheUsecase(
		ledger, datasetRepo, orgRepo, conf.Fabric.Chaincode, conf.Fabric.DefaultOrg,
	)

	orgs, err := orgRepo.ListActive(ctx)
	if err != nil {
		slog.Error("failed to list organizations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	ledger.EnrollAll(orgs)

	cacheService := service.NewCacheService(cacheUsecase, conf.Fabric.CacheIntervalMin)
	if err := cacheService.Start(); err != nil {
		slog.Error("failed to start cache job", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cacheService.Stop()

	auth := service.NewAuthService(rdb)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("eckochain-client"))
	}
	e.Use(middleware.NewAuthMiddleware(auth).IdentifyIdentity)

	rest.NewHandler(datasetUsecase, contractUsecase).RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
