package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		photo_url TEXT,
		blood_group TEXT,
		district TEXT,
		upazila TEXT,
		role TEXT NOT NULL DEFAULT 'donar',
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDonationRequestTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE donation_requests (
		id TEXT PRIMARY KEY,
		requester_name TEXT NOT NULL,
		requester_email TEXT NOT NULL,
		recipient_name TEXT NOT NULL,
		recipient_district TEXT NOT NULL,
		recipient_upazila TEXT NOT NULL,
		full_address TEXT,
		hospital_name TEXT NOT NULL,
		blood_group TEXT NOT NULL,
		donation_date TEXT NOT NULL,
		donation_time TEXT NOT NULL,
		request_message TEXT,
		donor_name TEXT,
		donor_email TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createFundingTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE fundings (
		id TEXT PRIMARY KEY,
		donor_name TEXT,
		donor_email TEXT,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		session_id TEXT,
		paid_at DATETIME,
		created_at DATETIME
	);`)
}

func closeDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
