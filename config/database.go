package config

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var (
	DB   *sql.DB
	once sync.Once
)

// OpenDB 按配置打开数据库并执行迁移
func OpenDB(cfg DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch cfg.Driver {
	case "mysql":
		db, err = sql.Open("mysql", cfg.DSN)
	case "sqlite":
		db, err = sql.Open("sqlite", cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err = autoMigrate(db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(cfg DatabaseConfig) {
	once.Do(func() {
		var err error
		DB, err = OpenDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.Driver).Msg("failed to init database")
		}
		log.Info().Str("driver", cfg.Driver).Msg("database connected and migrated")
	})
}

// autoMigrate 自动迁移数据库
func autoMigrate(db *sql.DB, driver string) error {
	// 创建 migrations 表用于跟踪迁移状态
	if err := createMigrationsTable(db, driver); err != nil {
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	// 运行所有迁移
	migrations := getMigrations(driver)
	for _, migration := range migrations {
		if err := runMigrationIfNotExists(db, migration); err != nil {
			return fmt.Errorf("failed to run migration %s: %v", migration.Name, err)
		}
	}

	return nil
}

// Migration 迁移结构
type Migration struct {
	Name       string
	Statements []string
}

// createMigrationsTable 创建迁移表
func createMigrationsTable(db *sql.DB, driver string) error {
	createSQL := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
	`
	if driver == "sqlite" {
		createSQL = `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
		`
	}
	_, err := db.Exec(createSQL)
	return err
}

// getMigrations 获取所有迁移
func getMigrations(driver string) []Migration {
	if driver == "sqlite" {
		return sqliteMigrations()
	}
	return mysqlMigrations()
}

func mysqlMigrations() []Migration {
	return []Migration{
		{
			Name: "001_create_users_table",
			Statements: []string{`
			CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				email VARCHAR(255) NOT NULL UNIQUE,
				username VARCHAR(255) NOT NULL UNIQUE,
				password VARCHAR(255) NOT NULL,
				first_name VARCHAR(255),
				last_name VARCHAR(255),
				is_active BOOLEAN DEFAULT TRUE,
				last_login_at DATETIME,
				created_at DATETIME,
				updated_at DATETIME,
				INDEX idx_users_email (email),
				INDEX idx_users_username (username)
			)
			`},
		},
		{
			Name: "002_create_plants_table",
			Statements: []string{`
			CREATE TABLE IF NOT EXISTS plants (
				id INT AUTO_INCREMENT PRIMARY KEY,
				user_id INT NOT NULL,
				name VARCHAR(255) NOT NULL,
				species VARCHAR(255) NOT NULL,
				purchase_date DATETIME NOT NULL,
				image TEXT,
				notes TEXT,
				quantity_in_liters DOUBLE NOT NULL,
				frequency INT NOT NULL,
				frequency_unit VARCHAR(10) NOT NULL DEFAULT 'days',
				last_watered DATETIME NOT NULL,
				next_watering DATETIME NOT NULL,
				preferred_time_of_day VARCHAR(20) NOT NULL DEFAULT 'morning',
				reminder_enabled BOOLEAN DEFAULT TRUE,
				is_active BOOLEAN DEFAULT TRUE,
				created_at DATETIME,
				updated_at DATETIME,
				INDEX idx_plants_user (user_id),
				INDEX idx_plants_next_watering (next_watering),
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
			`},
		},
		{
			Name: "003_create_watering_records_table",
			Statements: []string{`
			CREATE TABLE IF NOT EXISTS watering_records (
				id INT AUTO_INCREMENT PRIMARY KEY,
				plant_id INT NOT NULL,
				user_id INT NOT NULL,
				watered_at DATETIME NOT NULL,
				quantity_in_liters DOUBLE NOT NULL,
				notes TEXT,
				created_at DATETIME,
				INDEX idx_records_plant (plant_id, watered_at),
				INDEX idx_records_user (user_id, watered_at),
				FOREIGN KEY (plant_id) REFERENCES plants(id),
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
			`},
		},
	}
}

func sqliteMigrations() []Migration {
	return []Migration{
		{
			Name: "001_create_users_table",
			Statements: []string{`
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL UNIQUE,
				password TEXT NOT NULL,
				first_name TEXT,
				last_name TEXT,
				is_active BOOLEAN DEFAULT 1,
				last_login_at TEXT,
				created_at TEXT,
				updated_at TEXT
			)
			`},
		},
		{
			Name: "002_create_plants_table",
			Statements: []string{
				`
			CREATE TABLE IF NOT EXISTS plants (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				name TEXT NOT NULL,
				species TEXT NOT NULL,
				purchase_date TEXT NOT NULL,
				image TEXT,
				notes TEXT,
				quantity_in_liters REAL NOT NULL,
				frequency INTEGER NOT NULL,
				frequency_unit TEXT NOT NULL DEFAULT 'days',
				last_watered TEXT NOT NULL,
				next_watering TEXT NOT NULL,
				preferred_time_of_day TEXT NOT NULL DEFAULT 'morning',
				reminder_enabled BOOLEAN DEFAULT 1,
				is_active BOOLEAN DEFAULT 1,
				created_at TEXT,
				updated_at TEXT
			)
			`,
				`CREATE INDEX IF NOT EXISTS idx_plants_user ON plants(user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_plants_next_watering ON plants(next_watering)`,
			},
		},
		{
			Name: "003_create_watering_records_table",
			Statements: []string{
				`
			CREATE TABLE IF NOT EXISTS watering_records (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				plant_id INTEGER NOT NULL REFERENCES plants(id),
				user_id INTEGER NOT NULL REFERENCES users(id),
				watered_at TEXT NOT NULL,
				quantity_in_liters REAL NOT NULL,
				notes TEXT,
				created_at TEXT
			)
			`,
				`CREATE INDEX IF NOT EXISTS idx_records_plant ON watering_records(plant_id, watered_at)`,
				`CREATE INDEX IF NOT EXISTS idx_records_user ON watering_records(user_id, watered_at)`,
			},
		},
	}
}

// runMigrationIfNotExists 如果迁移不存在则运行
func runMigrationIfNotExists(db *sql.DB, migration Migration) error {
	// 检查迁移是否已执行
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", migration.Name).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		log.Debug().Str("migration", migration.Name).Msg("migration already executed, skipping")
		return nil
	}

	// 执行迁移
	log.Info().Str("migration", migration.Name).Msg("running migration")
	for _, stmt := range migration.Statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// 记录迁移已执行
	_, err = db.Exec("INSERT INTO migrations (name) VALUES (?)", migration.Name)
	return err
}
