package router

import (
	"github.com/gridmarket/gridmarket-api/internal/application"
	"github.com/gridmarket/gridmarket-api/internal/container"
	handlers "github.com/gridmarket/gridmarket-api/internal/interface/http"
	"github.com/gridmarket/gridmarket-api/internal/router/modules"
)

// InitModules builds the application services from container singletons
// and registers every feature module with the router registry. Called
// once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users := container.GetUserRepo()
	transfers := container.GetTransferRepo()
	instances := container.GetInstanceRepo()

	registrar := application.NewRegistrar(users, container.GetHasher(), application.RegistrationPolicy{
		RootInviteCode:   cfg.RootInviteCode,
		InviteCodePrefix: cfg.InviteCodePrefix,
		SignupCredits:    cfg.SignupCredits,
	}, logger)
	registrar.Pub = container.GetRabbitPub()
	registrar.ES = container.GetES()
	registrar.ESUsersIndex = cfg.ESUsersIndex

	svc := application.NewService(
		users,
		container.GetHasher(),
		container.GetJWT(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
	)

	ledger := application.NewLedger(users, transfers, application.FeePolicy{
		FeeRate:    cfg.TransferFeeRate,
		EnergyCost: cfg.TransferEnergyCost,
	}, logger)

	catalog := application.NewCatalog(instances, logger)

	authHandler := handlers.NewAuthHandler(registrar, svc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(svc, logger)
	walletHandler := handlers.NewWalletHandler(ledger, svc, logger, container.GetRabbitPub(), cfg.MailSendEnabled)
	catalogHandler := handlers.NewCatalogHandler(catalog, logger)

	r.Add(modules.NewAuth(authHandler, container.GetJWT()))
	r.Add(modules.NewUser(userHandler, container.GetJWT()))
	r.Add(modules.NewWallet(walletHandler, container.GetJWT()))
	r.Add(modules.NewCatalog(catalogHandler, container.GetJWT()))
}
