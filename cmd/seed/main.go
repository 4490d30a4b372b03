package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/config"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/repository"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/seed"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation (1: insert random users, 2: insert random animals, 3: insert random reservations, 4: import the real roster)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load the configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// database pool
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create the database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not dial, ping to surface connection problems early
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to the database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("the user count must be positive")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("failed to generate a random user", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("failed to insert a user", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted users", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("the animal count must be positive")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				animal := utils.GenerateRandomAnimal()
				if err := repo.CreateAnimal(animal); err != nil {
					slog.Error("failed to insert an animal", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted animals", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("the reservation count must be positive")
			return
		}

		animals, err := repo.GetAllAnimals()
		if err != nil {
			slog.Error("failed to fetch the animals", slog.String("error", err.Error()))
			return
		}
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("failed to fetch the users", slog.String("error", err.Error()))
			return
		}
		if len(animals) == 0 || len(users) == 0 {
			slog.Error("seed users and animals before seeding reservations")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			animal := animals[rand.Intn(len(animals))]
			user := users[rand.Intn(len(users))]

			reservation := utils.GenerateRandomUpcomingReservation(animal.ID, user.ID, cfg.Shelter.OpeningHour, cfg.Shelter.ClosingHour)
			if err := repo.CreateReservation(reservation); err != nil {
				// overlaps with an existing booking are expected here
				slog.Warn("failed to insert a reservation", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("inserted reservations", slog.Int("count", n-cnt))
	case 4:
		seed.SeedRealData(repo)
	default:
		slog.Error("unknown operation")
	}
}
