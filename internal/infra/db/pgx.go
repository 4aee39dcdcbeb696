package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPool は業務データ（employees/orders）読み取り用のpgxプールを返す。
// 識別系テーブルとDBは共有するが、こちらはGORMを通さず素のSQLで読む。
func ConnectPool(ctx context.Context) (*pgxpool.Pool, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return pgxpool.New(ctx, dsn)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getenv("POSTGRES_HOST", "localhost"),
		getenv("POSTGRES_PORT", "5432"),
		getenv("POSTGRES_USER", "postgres"),
		getenv("POSTGRES_PASSWORD", "postgres"),
		getenv("POSTGRES_DB", "northwind"),
		getenv("POSTGRES_SSLMODE", "disable"),
	)

	return pgxpool.New(ctx, dsn)
}
