// Command seed bootstraps an empty database with a super admin account and
// a default zone and cell, so a fresh deployment has something to log into.
// It is idempotent: if a super admin already exists it does nothing.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.DatabaseDSN == "" {
		log.Fatal("database DSN is not set")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	m, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		log.Fatalf("repository init error: %v", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	users := m.Users(db)

	existing, err := users.List(ctx)
	if err != nil {
		log.Fatalf("user lookup error: %v", err)
	}
	for _, u := range existing {
		if u.Role == models.RoleSuperAdmin {
			fmt.Println("Super admin already exists, nothing to do.")
			return
		}
	}

	email, password, err := promptCredentials()
	if err != nil {
		log.Fatalf("input error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("password hash error: %v", err)
	}

	admin, err := users.Create(ctx, &models.User{
		Email:        email,
		Name:         "Super Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
	})
	if err != nil {
		log.Fatalf("user create error: %v", err)
	}
	fmt.Println("Super admin created:", admin.Email)

	zone, err := m.Zones(db).Create(ctx, &models.Zone{
		Name:          "Main Zone",
		Description:   "Default zone",
		CoordinatorID: admin.ID,
	})
	if err != nil {
		log.Fatalf("zone create error: %v", err)
	}
	fmt.Println("Default zone created:", zone.Name)

	cell, err := m.Cells(db).Create(ctx, &models.Cell{
		Name:     "Main Cell",
		LeaderID: admin.ID,
		ZoneID:   zone.ID,
	})
	if err != nil {
		log.Fatalf("cell create error: %v", err)
	}
	fmt.Println("Default cell created:", cell.Name)

	fmt.Println("Seeding completed.")

}

func promptCredentials() (string, []byte, error) {

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter super admin email")

	email, err := reader.ReadString('\n')
	if err != nil {
		return "", nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil, fmt.Errorf("email must not be empty")
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", nil, err
	}
	if len(password) < 8 {
		return "", nil, fmt.Errorf("password must be at least 8 characters")
	}

	return email, password, nil
}
