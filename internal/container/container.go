package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/config"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router auto-wires feature modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	rabbitPub  *helpers.RabbitPublisher
	hasher     helpers.PasswordHasher

	userRepo     repository.UserRepository
	transferRepo repository.TransferRepository
	instanceRepo repository.InstanceRepository
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetGCS(s *storage.Client)      { gcsClient = s }
func GetGCS() *storage.Client       { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetHasher(h helpers.PasswordHasher) { hasher = h }
func GetHasher() helpers.PasswordHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewBcryptHasher()
}

// Store singletons, built once by main according to STORE_DRIVER.

func SetUserRepo(r repository.UserRepository)         { userRepo = r }
func GetUserRepo() repository.UserRepository          { return userRepo }
func SetTransferRepo(r repository.TransferRepository) { transferRepo = r }
func GetTransferRepo() repository.TransferRepository  { return transferRepo }
func SetInstanceRepo(r repository.InstanceRepository) { instanceRepo = r }
func GetInstanceRepo() repository.InstanceRepository  { return instanceRepo }
