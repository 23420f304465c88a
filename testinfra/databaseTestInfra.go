package testinfra

import (
	"context"
	"os"
	"strings"
	"tenantry/common"
	"tenantry/persistence"
	"testing"

	"github.com/google/uuid"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// MysqlTestEnabled reports whether a MySQL service is configured through TEST_MYSQL_SERVICE,
// e.g. TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func MysqlTestEnabled() bool {
	return os.Getenv("TEST_MYSQL_SERVICE") != ""
}

// RequireMysql skips the current test when no MySQL service is configured.
func RequireMysql(t *testing.T) {
	if !MysqlTestEnabled() {
		t.Skip("TEST_MYSQL_SERVICE is not set")
	}
}

func StartMysqlTestDatabase(baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		mysqlSvc = "root:root@(127.0.0.1:3306)"
	}
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		common.Log.Fatalf("failed to prepare database %v", err)
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		common.Log.Fatalf("database conneciton failed %v", err)
	}

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopMysqlTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if db := testDatabase.DS.GormDB(context.TODO()); db != nil {
		if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			common.Log.Warn("failed to drop test database: " + testDatabase.TestDatabaseName)
		} else {
			common.Log.Info("test database " + testDatabase.TestDatabaseName + " dropped")
		}
	}

	// close connection
	testDatabase.DS.Stop()
}
