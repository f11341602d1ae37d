// internal/app/bootstrap/seed.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of the seed_file YAML.
//
//	stations:
//	  - code: CENTRAL
//	    name: Central Station
//	users:
//	  - username: jdoe
//	    password: changeme
//	    role: police
//	    station: CENTRAL
type seedFile struct {
	Stations []seedStation `yaml:"stations"`
	Users    []seedUser    `yaml:"users"`
}

type seedStation struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Street   string `yaml:"street"`
	City     string `yaml:"city"`
	State    string `yaml:"state"`
	ZipCode  string `yaml:"zipCode"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	InCharge string `yaml:"inCharge"`
}

type seedUser struct {
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Role        string   `yaml:"role"`
	FullName    string   `yaml:"fullName"`
	Email       string   `yaml:"email"`
	BadgeNumber string   `yaml:"badgeNumber"`
	Department  string   `yaml:"department"`
	Phone       string   `yaml:"phone"`
	Station     string   `yaml:"station"`
	Permissions []string `yaml:"permissions"`
}

// parseSeed decodes and checks a seed document.
func parseSeed(raw []byte) (seedFile, error) {
	var sf seedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return seedFile{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, st := range sf.Stations {
		if strings.TrimSpace(st.Code) == "" || strings.TrimSpace(st.Name) == "" {
			return seedFile{}, fmt.Errorf("stations[%d]: code and name are required", i)
		}
	}
	for i, u := range sf.Users {
		if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Email) == "" {
			return seedFile{}, fmt.Errorf("users[%d]: username and email are required", i)
		}
		if !inputval.IsValidPassword(u.Password) {
			return seedFile{}, fmt.Errorf("users[%d]: password must be at least %d characters", i, inputval.MinPasswordLength)
		}
		switch strings.ToLower(strings.TrimSpace(u.Role)) {
		case models.RoleAdmin, models.RolePolice:
		default:
			return seedFile{}, fmt.Errorf("users[%d]: role must be admin or police", i)
		}
	}
	return sf, nil
}

// loadSeed inserts the stations and users from path. Records that already
// exist are skipped, so the file can stay configured across restarts.
func loadSeed(ctx context.Context, deps DBDeps, path string, cost int, logger *zap.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	sf, err := parseSeed(raw)
	if err != nil {
		return err
	}

	stations := stationstore.New(deps.MongoDatabase)
	var addedStations int
	for _, st := range sf.Stations {
		_, err := stations.Create(ctx, models.Station{
			StationCode: st.Code,
			StationName: st.Name,
			Address:     models.StationAddress{Street: st.Street, City: st.City, State: st.State, ZipCode: st.ZipCode},
			Contact:     models.StationContact{Phone: st.Phone, Email: st.Email},
			InCharge:    st.InCharge,
		})
		if errors.Is(err, stationstore.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed station %s: %w", st.Code, err)
		}
		addedStations++
	}

	users := userstore.New(deps.MongoDatabase)
	var addedUsers int
	for _, su := range sf.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", su.Username, err)
		}
		fullName := su.FullName
		if strings.TrimSpace(fullName) == "" {
			fullName = su.Username
		}
		_, err = users.Create(ctx, models.User{
			Username:     su.Username,
			PasswordHash: string(hash),
			Role:         su.Role,
			FullName:     fullName,
			Email:        su.Email,
			BadgeNumber:  su.BadgeNumber,
			Department:   su.Department,
			Phone:        su.Phone,
			Station:      su.Station,
			Status:       models.StatusActive,
			Permissions:  su.Permissions,
		})
		if errors.Is(err, userstore.ErrDuplicateUsername) || errors.Is(err, userstore.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Username, err)
		}
		addedUsers++
	}

	logger.Info("seed file applied",
		zap.String("file", path),
		zap.Int("stations_added", addedStations),
		zap.Int("users_added", addedUsers))
	return nil
}
