package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Dialector builds the gorm dialector for the configured driver.
func (c DatabaseConfig) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		network := "tcp"
		address := fmt.Sprintf("%s:%s", c.Host, c.Port)
		// Cloud SQL: DB_HOST=/cloudsql/<CONNECTION_NAME> is a unix socket.
		if strings.HasPrefix(c.Host, "/cloudsql/") {
			network = "unix"
			address = c.Host
		}
		dsn := fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true",
			c.User,
			c.Password,
			network,
			address,
			c.Name,
		)
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.Name,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// ConnectDatabaseWithRetry blocks until the database answers, backing off up to 30s between attempts.
func ConnectDatabaseWithRetry(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := c.Dialector()
	if err != nil {
		return nil, err
	}

	var attempt int
	for {
		attempt++
		db, err := OpenDatabase(dialector, c)
		if err == nil {
			log.Printf("connected to database (driver=%s attempt=%d)", c.Driver, attempt)
			return db, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// OpenDatabase opens one gorm handle and tunes its pool. Tests pass a sqlmock-backed dialector.
func OpenDatabase(dialector gorm.Dialector, c DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, initConfig())
	if err != nil {
		return nil, err
	}

	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
		if c.MaxIdleConns >= 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
		}
		if c.ConnMaxIdleTime > 0 {
			sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
		}
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return db, nil
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
		// every invoice statement commits on its own
		SkipDefaultTransaction: true,
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
