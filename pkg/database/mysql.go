package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/music-timeline-game/pkg/models"
)

type MySQLDB struct {
	*gorm.DB
}

func NewMySQLDB(host, port, user, password, dbname string) (*MySQLDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &MySQLDB{DB: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	return db.AutoMigrate(
		&models.Session{},
		&models.Player{},
		&models.TurnRecord{},
		&models.GameStats{},
	)
}

// Session operations
func (db *MySQLDB) CreateSession(session *models.Session) error {
	return db.Create(session).Error
}

func (db *MySQLDB) GetSessionByPIN(pin string) (*models.Session, error) {
	var session models.Session
	if err := db.Preload("Players").First(&session, "pin = ?", pin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (db *MySQLDB) SaveSession(session *models.Session) error {
	return db.Omit("Players").Save(session).Error
}

// Player operations
func (db *MySQLDB) CreatePlayer(player *models.Player) error {
	return db.Create(player).Error
}

func (db *MySQLDB) SavePlayer(player *models.Player) error {
	return db.Save(player).Error
}

func (db *MySQLDB) GetPlayers(sessionID uuid.UUID) ([]*models.Player, error) {
	var players []*models.Player
	if err := db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// History operations
func (db *MySQLDB) CreateTurnRecord(record *models.TurnRecord) error {
	return db.Create(record).Error
}

func (db *MySQLDB) GetTurnRecords(sessionID uuid.UUID, gameNumber int) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord
	if err := db.Where("session_id = ? AND game_number = ?", sessionID, gameNumber).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (db *MySQLDB) CreateGameStats(stats *models.GameStats) error {
	return db.Create(stats).Error
}

// Atomically runs fn against a store bound to a single database
// transaction. Session mutations are additionally serialized per PIN by
// the caller, so the transaction only has to keep the multi-row write
// atomic.
func (db *MySQLDB) Atomically(fn func(tx Store) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&MySQLDB{DB: tx})
	})
}
