package main

import (
	"context"
	"fmt"
	"time"

	"dinebook/config"
	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	availabilityModel "dinebook/internal/domains/availability/model"
	availabilityRepository "dinebook/internal/domains/availability/repository"
	restaurantModel "dinebook/internal/domains/restaurant/model"
	restaurantRepository "dinebook/internal/domains/restaurant/repository"
	userModel "dinebook/internal/domains/user/model"
	userRepository "dinebook/internal/domains/user/repository"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/logger"
	gModel "dinebook/shared/model"
	"dinebook/shared/password"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	seedDays      = 28
	firstSlotHour = 17
	lastSlotHour  = 19
)

type account struct {
	Username  string
	Email     string
	Password  string
	Role      role.Role
	FirstName string
}

type profile struct {
	account
	Name    string
	Cuisine string
	Address string
}

var admin = account{
	Username: "admin",
	Email:    "admin@example.com",
	Password: "adminpass",
	Role:     role.Admin,
}

var restaurants = []profile{
	{
		account: account{Username: "oiji_mi", Email: "oiji_mi@example.com", Password: "restaurantpass", Role: role.Restaurant},
		Name:    "Oiji Mi",
		Cuisine: "Korean",
		Address: "17 W 19th St, New York, NY 10011",
	},
	{
		account: account{Username: "rosella", Email: "rosella@example.com", Password: "restaurantpass", Role: role.Restaurant},
		Name:    "Rosella",
		Cuisine: "Japanese",
		Address: "137 Avenue A, New York, NY 10009",
	},
	{
		account: account{Username: "four_horseman", Email: "four_horseman@example.com", Password: "restaurantpass", Role: role.Restaurant},
		Name:    "The Four Horseman",
		Cuisine: "American",
		Address: "295 Grand St, Brooklyn, NY 11211",
	},
}

var diners = []account{
	{Username: "gyulook", Email: "gyulook@example.com", Password: "dinerk", Role: role.Diner, FirstName: "Kyuhoon"},
	{Username: "reno", Email: "irene@example.com", Password: "dineri", Role: role.Diner, FirstName: "Irene"},
	{Username: "oscar", Email: "oscar@example.com", Password: "dinero", Role: role.Diner, FirstName: "Oscar"},
}

type seeder struct {
	users          userRepository.User
	restaurants    restaurantRepository.Restaurant
	availabilities availabilityRepository.Availability
	now            time.Time
}

func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg)
	timezone.Init(cfg.App.Timezone)

	db := postgres.New(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connections")
		}
	}()

	tracer := otel.New(cfg)

	s := seeder{
		users:          userRepository.New(db, tracer),
		restaurants:    restaurantRepository.New(db, tracer),
		availabilities: availabilityRepository.New(db, tracer),
		now:            timezone.Now(),
	}

	if err := s.run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().Msg("Successfully seeded data")
}

// run only creates what is missing, so it is safe to repeat.
func (s seeder) run(ctx context.Context) error {
	if _, err := s.ensureUser(ctx, admin); err != nil {
		return err
	}

	for _, p := range restaurants {
		owner, err := s.ensureUser(ctx, p.account)
		if err != nil {
			return err
		}

		restaurantID, err := s.ensureRestaurant(ctx, owner, p)
		if err != nil {
			return err
		}

		created, err := s.ensureSlots(ctx, restaurantID)
		if err != nil {
			return err
		}

		log.Info().Str("restaurant", p.Name).Int("slots_created", created).Msg("Restaurant seeded")
	}

	for _, d := range diners {
		if _, err := s.ensureUser(ctx, d); err != nil {
			return err
		}
	}

	return nil
}

func (s seeder) ensureUser(ctx context.Context, a account) (string, error) {
	filter := gDto.And(gDto.Eq(userModel.TableName, userModel.FieldUsername, a.Username))

	exists, err := s.users.Exist(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("checking user %s: %w", a.Username, err)
	}

	if exists {
		existing, err := s.users.Get(ctx, filter, userModel.FieldID)
		if err != nil {
			return "", fmt.Errorf("loading user %s: %w", a.Username, err)
		}

		log.Info().Str("username", a.Username).Msg("User already exists")

		return existing.ID, nil
	}

	hashed, err := password.Hash(a.Password)
	if err != nil {
		return "", fmt.Errorf("hashing password for %s: %w", a.Username, err)
	}

	user := userModel.User{
		ID:        uuid.NewString(),
		Username:  a.Username,
		Email:     a.Email,
		Password:  hashed,
		Role:      a.Role,
		FirstName: a.FirstName,
		Active:    true,
		Metadata:  gModel.NewMetadata(constant.ContextSystem, s.now),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return "", fmt.Errorf("creating user %s: %w", a.Username, err)
	}

	log.Info().Str("username", a.Username).Str("role", a.Role.String()).Msg("Created user")

	return user.ID, nil
}

func (s seeder) ensureRestaurant(ctx context.Context, ownerID string, p profile) (string, error) {
	filter := gDto.And(gDto.Eq(restaurantModel.TableName, restaurantModel.FieldUserID, ownerID))

	exists, err := s.restaurants.Exist(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("checking restaurant %s: %w", p.Name, err)
	}

	if exists {
		existing, err := s.restaurants.Get(ctx, filter, restaurantModel.FieldID)
		if err != nil {
			return "", fmt.Errorf("loading restaurant %s: %w", p.Name, err)
		}

		return existing.ID, nil
	}

	restaurant := restaurantModel.Restaurant{
		ID:       uuid.NewString(),
		UserID:   ownerID,
		Name:     p.Name,
		Cuisine:  &p.Cuisine,
		Address:  &p.Address,
		Metadata: gModel.NewMetadata(constant.ContextSystem, s.now),
	}

	if err := s.restaurants.Insert(ctx, restaurant); err != nil {
		return "", fmt.Errorf("creating restaurant %s: %w", p.Name, err)
	}

	return restaurant.ID, nil
}

// ensureSlots opens the dinner hours for the coming weeks, skipping slots that
// already exist in any state.
func (s seeder) ensureSlots(ctx context.Context, restaurantID string) (int, error) {
	today := gModel.DateOf(s.now)

	var missing []availabilityModel.Availability

	for day := range seedDays {
		date := today.AddDays(day)

		for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
			start := gModel.TimeOfDay{Hour: hour}

			exists, err := s.availabilities.Exist(ctx, gDto.And(
				gDto.Eq(availabilityModel.TableName, availabilityModel.FieldRestaurantID, restaurantID),
				gDto.Eq(availabilityModel.TableName, availabilityModel.FieldDate, date),
				gDto.Eq(availabilityModel.TableName, availabilityModel.FieldStartTime, start),
			))
			if err != nil {
				return 0, fmt.Errorf("checking slot %s %s: %w", date, start, err)
			}

			if exists {
				continue
			}

			missing = append(missing, availabilityModel.Availability{
				ID:           uuid.NewString(),
				RestaurantID: restaurantID,
				Date:         date,
				StartTime:    start,
				Metadata:     gModel.NewMetadata(constant.ContextSystem, s.now),
			}.WithState(availabilityModel.StateOpen))
		}
	}

	if err := s.availabilities.InsertBulk(ctx, missing); err != nil {
		return 0, fmt.Errorf("creating slots: %w", err)
	}

	return len(missing), nil
}
