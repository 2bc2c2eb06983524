// Command seed populates the database with demo users and generated leads
// for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/jordanlanch/leadcrm/config"
	"github.com/jordanlanch/leadcrm/pkg/auth"
	"github.com/jordanlanch/leadcrm/pkg/database"
	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/testdata"
	"github.com/jordanlanch/leadcrm/pkg/users"
)

func main() {
	count := flag.Int("count", 200, "number of leads to generate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer database.Disconnect(context.Background(), db)

	leadStore := leads.NewMongoStore(db)
	userStore := users.NewMongoStore(db)

	if err := leadStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure lead indexes: %v", err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure user indexes: %v", err)
	}

	orgID := "64f0000000000000000000aa"

	admin := seedUser(ctx, userStore, &users.User{
		Name:           "Demo Admin",
		Email:          "admin@leadcrm.local",
		Role:           policy.RoleAdmin,
		OrganizationID: orgID,
	}, "admin-password")

	agent := seedUser(ctx, userStore, &users.User{
		Name:           "Demo Agent",
		Email:          "agent@leadcrm.local",
		Role:           policy.RoleAgent,
		OrganizationID: orgID,
	}, "agent-password")

	seedUser(ctx, userStore, &users.User{
		Name:  "Demo Superadmin",
		Email: "root@leadcrm.local",
		Role:  policy.RoleSuperAdmin,
	}, "root-password")

	gen := testdata.NewGenerator(*seed)

	agentCfg := testdata.DefaultConfig(*count / 2)
	agentCfg.CreatedBy = agent.ID
	agentCfg.OrganizationID = orgID
	n1, err := gen.Seed(ctx, leadStore, agentCfg)
	if err != nil {
		log.Fatalf("failed to seed agent leads: %v", err)
	}

	adminCfg := testdata.DefaultConfig(*count - *count/2)
	adminCfg.CreatedBy = admin.ID
	adminCfg.OrganizationID = orgID
	n2, err := gen.Seed(ctx, leadStore, adminCfg)
	if err != nil {
		log.Fatalf("failed to seed admin leads: %v", err)
	}

	log.Printf("seeded %d leads and 3 users (admin@leadcrm.local, agent@leadcrm.local, root@leadcrm.local)", n1+n2)
}

// seedUser inserts a user, reusing the existing account when the email is
// already registered so the seeder is safe to rerun.
func seedUser(ctx context.Context, store users.Store, u *users.User, password string) *users.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u.PasswordHash = hash

	if err := store.Insert(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			existing, getErr := store.GetByEmail(ctx, u.Email)
			if getErr != nil {
				log.Fatalf("failed to load existing user %s: %v", u.Email, getErr)
			}
			return existing
		}
		log.Fatalf("failed to create user %s: %v", u.Email, err)
	}
	return u
}
