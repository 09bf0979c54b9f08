package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// pgUniqueViolation is the SQLSTATE postgresql reports for unique constraint failures.
const pgUniqueViolation = "23505"

// pgForeignKeyViolation is the SQLSTATE for foreign key constraint failures.
const pgForeignKeyViolation = "23503"

func config() *gorm.Config {
	return &gorm.Config{
		Logger: newLogger(log.Logger),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	// Migration runs with foreign keys disabled since sqlite does not support
	// ALTER COLUMN and copies tables instead
	db, err := gorm.Open(sqlite.Open(dsn), config())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Now, reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// sqlite only supports one writer. A single connection prevents SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	return register(db)
}

// ConnectPostgres opens a postgresql database.
func ConnectPostgres(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), config())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)

	return register(db)
}

// register installs the error translating callbacks and sets DB.
func register(db *gorm.DB) error {
	callbacks := []struct {
		processor interface {
			Register(string, func(*gorm.DB)) error
		}
		name string
		fn   func(*gorm.DB)
	}{
		{db.Callback().Query().After("*"), "pocketguard:after_query", queryCallback},
		{db.Callback().Query().After("*"), "pocketguard:after_query_general", generalCallback},
		{db.Callback().Create().After("*"), "pocketguard:after_create", createUpdateCallback},
		{db.Callback().Create().After("*"), "pocketguard:after_create_general", generalCallback},
		{db.Callback().Update().After("*"), "pocketguard:after_update", createUpdateCallback},
		{db.Callback().Update().After("*"), "pocketguard:after_update_general", generalCallback},
		{db.Callback().Delete().After("*"), "pocketguard:after_delete_general", generalCallback},
		{db.Callback().Row().After("*"), "pocketguard:after_row_general", generalCallback},
	}

	for _, c := range callbacks {
		if err := c.processor.Register(c.name, c.fn); err != nil {
			return err
		}
	}

	DB = db
	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		name = regexp.MustCompile("ies$").ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimSuffix(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	msg := db.Error.Error()
	var constraint, code string

	var pgErr *pgconn.PgError
	if errors.As(db.Error, &pgErr) {
		constraint, code = pgErr.ConstraintName, pgErr.Code
	}

	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"),
		code == pgUniqueViolation && constraint == "idx_users_username":
		db.Error = ErrUsernameTaken

	case strings.Contains(msg, "UNIQUE constraint failed: budget_categories.budget_id, budget_categories.category_id"),
		code == pgUniqueViolation && constraint == "idx_budget_category":
		db.Error = ErrAllocationNotUnique

	case strings.Contains(msg, "FOREIGN KEY constraint failed"), code == pgForeignKeyViolation:
		db.Error = ErrReferenceNotFound
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	var sqliteErr *go_sqlite.Error
	var pgErr *pgconn.PgError

	// "sql: database is closed" is hard-coded in the sql module
	if db.Error.Error() == "sql: database is closed" || errors.As(db.Error, &sqliteErr) || errors.As(db.Error, &pgErr) {
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral
	}
}

// migrate migrates all models to the schema defined in the code
// and seeds the reference data.
func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(User{}, Category{}, Budget{}, BudgetCategory{}, Expense{}, BankAccount{}, QuizQuestion{}, QuizAttempt{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	err = seedQuizQuestions(db)
	if err != nil {
		return fmt.Errorf("error seeding quiz questions: %w", err)
	}

	return nil
}
