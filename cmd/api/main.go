package main

import (
	"context"
	"log"
	"time"

	"northwind/internal/config"
	"northwind/internal/domain/model"
	"northwind/internal/handler"
	"northwind/internal/infra/db"
	infraRepo "northwind/internal/infra/repository"
	"northwind/internal/server"
	"northwind/internal/token"
	"northwind/internal/usecase"
	"northwind/internal/validator"

	"github.com/joho/godotenv"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	// 識別系テーブルだけマイグレーション（employees/ordersは触らない）
	if err := gormDB.AutoMigrate(
		&model.Account{},
		&model.RefreshToken{},
		&model.Role{},
	); err != nil {
		log.Fatal(err)
	}

	// 業務データ読み取り用のpgxプール
	pool, err := db.ConnectPool(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	//Repository生成
	accountRepo := infraRepo.NewAccountGormRepository(gormDB)
	roleRepo := infraRepo.NewRoleGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	employeeRepo := infraRepo.NewEmployeePgxRepository(pool)
	orderRepo := infraRepo.NewOrderPgxRepository(pool)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	accountValidator := validator.NewAccountValidator()

	//Usecase生成
	accountUC := usecase.NewAccountUsecase(
		accountRepo, roleRepo, employeeRepo, txManager,
		issuer, hasher, verifier, accountValidator, clock,
	)
	refreshUC := usecase.NewRefreshTokenUsecase(accountRepo, employeeRepo, issuer, clock)
	orderUC := usecase.NewOrderUsecase(orderRepo, employeeRepo, accountRepo)

	//Handler生成
	userH := handler.NewUserHandler(accountUC, refreshUC)
	orderH := handler.NewOrderHandler(orderUC)

	//Server起動
	e := server.New(issuer, accountUC, userH, orderH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
