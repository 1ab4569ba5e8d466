// This program provides administrative tooling for the portal: database
// migrations and seeding, user creation, RSA key generation for the token
// keystore, and reconciliation of dashboards built directly in Metabase.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/dashboardbus/stores/dashboarddb"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/domain/userbus/stores/userdb"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/domain/workspacebus/stores/workspacedb"
	"github.com/hexalytics/portal/business/sdk/migrate"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/business/types/password"
	"github.com/hexalytics/portal/business/types/role"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/hexalytics/portal/foundation/metabase"
	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
)

// Config replicates the DB and Metabase settings the tooling needs.
type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"portal"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Metabase struct {
		URL           string        `envconfig:"METABASE_URL" default:"http://localhost:3000"`
		AdminEmail    string        `envconfig:"METABASE_ADMIN_EMAIL" default:"admin@example.com"`
		AdminPassword string        `envconfig:"METABASE_ADMIN_PASSWORD" default:"metabase"`
		Timeout       time.Duration `envconfig:"METABASE_TIMEOUT" default:"30s"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, seed, create-user, keygen, sync")
		return nil
	}

	// keygen has no database dependency.
	if os.Args[1] == "keygen" {
		return runKeygen(os.Args[2:])
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		return runMigrate(ctx, db)
	case "seed":
		return runSeed(ctx, db)
	case "create-user":
		userBus := userbus.NewCore(userdb.NewStore(log, db))
		return runCreateUser(ctx, userBus, os.Args[2:])
	case "sync":
		mb := metabase.New(metabase.Config{
			Log:           log,
			Host:          cfg.Metabase.URL,
			AdminEmail:    cfg.Metabase.AdminEmail,
			AdminPassword: cfg.Metabase.AdminPassword,
			Timeout:       cfg.Metabase.Timeout,
		})
		workspaceBus := workspacebus.NewCore(log, workspacedb.NewStore(log, db), mb)
		dashboardBus := dashboardbus.NewCore(log, dashboarddb.NewStore(log, db), mb)
		return runSync(ctx, log, mb, workspaceBus, dashboardBus)
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func runMigrate(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := migrate.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	fmt.Println("migrations complete")
	return nil
}

func runSeed(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := migrate.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	fmt.Println("seed data complete")
	return nil
}

func runCreateUser(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	emailStr := cmd.String("email", "", "User email (Required)")
	passStr := cmd.String("password", "", "User password (Required)")
	nameStr := cmd.String("name", "", "User full name (Required)")
	roleStr := cmd.String("role", "USER", "User role (ADMIN, USER)")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		Name:     n,
		Email:    *addr,
		Password: p,
		Role:     r,
	})
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: User created!\nID: %s\nEmail: %s\nRole: %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

// runKeygen creates an RSA private key and writes it PEM encoded to the
// keystore folder. The file name, minus the extension, is the kid the token
// layer looks up.
func runKeygen(args []string) error {
	cmd := flag.NewFlagSet("keygen", flag.ExitOnError)
	folder := cmd.String("folder", "foundation/zarf/keys", "Folder to write the key into")
	cmd.Parse(args)

	if err := os.MkdirAll(*folder, 0o755); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	kid := uuid.NewString()

	file, err := os.Create(filepath.Join(*folder, kid+".pem"))
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}
	defer file.Close()

	block := pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	if err := pem.Encode(file, &block); err != nil {
		return fmt.Errorf("encoding key: %w", err)
	}

	fmt.Printf("\nSUCCESS: Key written\nKID: %s\nFile: %s\n", kid, file.Name())
	return nil
}

// runSync walks every workspace collection in Metabase and registers any
// dashboard that exists upstream but has no local record. Dashboards created
// directly in the Metabase UI show up in the portal after a sync.
func runSync(ctx context.Context, log *logger.Logger, mb *metabase.Client, wb *workspacebus.Core, db *dashboardbus.Core) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	workspaces, err := wb.QueryAll(ctx)
	if err != nil {
		return fmt.Errorf("query workspaces: %w", err)
	}

	var registered int

	for _, ws := range workspaces {
		items, err := mb.CollectionItems(ctx, ws.CollectionID)
		if err != nil {
			log.Error(ctx, "sync: collection items", "workspace_id", ws.ID, "collection_id", ws.CollectionID, "err", err)
			continue
		}

		for _, item := range items {
			if item.Model != "dashboard" {
				continue
			}

			if _, err := db.QueryByUpstreamID(ctx, item.ID); err == nil {
				continue
			} else if !errors.Is(err, dashboardbus.ErrNotFound) {
				return fmt.Errorf("query upstream dashboard[%d]: %w", item.ID, err)
			}

			n, err := name.Parse(item.Name)
			if err != nil {
				log.Error(ctx, "sync: dashboard name", "upstream_id", item.ID, "name", item.Name, "err", err)
				continue
			}

			dsh, err := db.Register(ctx, dashboardbus.RegisterDashboard{
				WorkspaceID: ws.ID,
				Name:        n,
				UpstreamID:  item.ID,
			})
			if err != nil {
				return fmt.Errorf("register dashboard[%d]: %w", item.ID, err)
			}

			log.Info(ctx, "sync: dashboard registered", "dashboard_id", dsh.ID, "workspace_id", ws.ID, "upstream_id", item.ID)
			registered++
		}
	}

	fmt.Printf("\nSUCCESS: Sync complete, %d dashboard(s) registered\n", registered)
	return nil
}
