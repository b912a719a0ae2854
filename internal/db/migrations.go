package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements run on both postgres and sqlite. created_at is stored in UTC.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS waste_requests (
		backend_id VARCHAR(36) PRIMARY KEY,
		request_id VARCHAR(32) NOT NULL,
		user_type VARCHAR(16) NOT NULL DEFAULT 'public',
		name TEXT NOT NULL,
		phone VARCHAR(32) NOT NULL,
		address TEXT NOT NULL,
		area TEXT NOT NULL,
		waste_type VARCHAR(64) NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'collected')),
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_requests_created_at ON waste_requests (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_requests_status ON waste_requests (status);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_requests_phone ON waste_requests (phone);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
