package main

import (
	"tenantry/account"
	"tenantry/bootstrap"
	"tenantry/common"
	"tenantry/config"
	"tenantry/infra/metrics"
	"tenantry/infra/tracing"
	"tenantry/persistence"
	"tenantry/rbac"
	"tenantry/servehttp"
	"tenantry/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config.LoadEnvFile(".env")

	svcConfig, err := config.ParseServiceConfigFromEnv()
	if err != nil {
		common.Log.Fatalf("parse service config failed %v", err)
	}
	common.ConfigureLog(svcConfig.LogLevel)
	common.Log.Info("service start")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	closer, err := tracing.InitGlobalTracer(registry)
	if err != nil {
		common.Log.Fatalf("tracer initialization failed %v", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		common.Log.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			common.Log.Fatalf("failed to prepare database %v", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		common.Log.Fatalf("database conneciton failed %v", err)
	}
	defer ds.Stop()

	// database migration (race condition)
	if err := bootstrap.MigrateSchema(ds); err != nil {
		common.Log.Fatalf("database migration failed %v", err)
	}

	hasher := account.NewBcryptHasher()
	if err := bootstrap.DefaultSecurityConfiguration(ds, hasher, svcConfig.InitialAdminPassword, common.Log); err != nil {
		common.Log.Fatalf("failed to prepare default security configuration %v", err)
	}

	sessionStore := session.NewStore(svcConfig.TokenExpiration)
	resolver := rbac.NewCachedDomainResolver(rbac.NewGormDomainResolver(ds), svcConfig.DomainCacheTTL)
	assignments := rbac.NewAssignmentManager(ds, resolver, sessionStore, common.Log.WithField("component", "rbac"))
	users := account.NewUserManager(ds, hasher, sessionStore, common.Log.WithField("component", "users"))
	users.OnDelete(assignments.PurgeUser)

	engine := servehttp.NewEngine(servehttp.Services{
		Sessions:    sessionStore,
		Users:       users,
		Assignments: assignments,
	}, servehttp.EngineOptions{LoginRate: svcConfig.LoginRate, LoginBurst: svcConfig.LoginBurst, Metrics: httpMetrics})

	if err := servehttp.StartHTTPServer(engine, svcConfig.ListenAddr, svcConfig.ShutdownTimeout); err != nil {
		common.Log.Errorf("http server failed %v", err)
	}
	common.Log.Info("[QUIT] service exiting")
}
