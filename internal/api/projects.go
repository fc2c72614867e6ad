package api

import (
	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/validation"

	"github.com/google/uuid"
)

func createProject(repo sqlite.Repository, userID, name string, hourlyRateCents *int64) (*domain.Project, error) {
	validator := validation.NewValidator()
	if !validator.IsNonEmptyString(userID) {
		return nil, errors.NewInvalidInputError("user_id", userID, "must not be empty")
	}
	name = validator.TrimAndValidateString(name)
	if name == "" {
		return nil, errors.NewInvalidInputError("name", name, "must not be empty")
	}
	if hourlyRateCents != nil && *hourlyRateCents < 0 {
		return nil, errors.NewInvalidInputError("hourly_rate_cents", *hourlyRateCents, "must not be negative")
	}

	project := domain.Project{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		HourlyRateCents: hourlyRateCents,
	}

	mapper := domain.NewMapper()
	dbProject := mapper.Project.ToDatabase(project)
	if err := repo.CreateProject(&dbProject); err != nil {
		return nil, err
	}
	return &project, nil
}
