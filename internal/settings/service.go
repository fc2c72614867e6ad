package settings

import (
	"fmt"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/validation"
)

// Service provides per-user time-tracking settings. Unset users get
// defaults; updates are partial and range-checked.
type Service interface {
	GetSettings(userID string) (domain.Settings, error)
	UpdateSettings(userID string, patch domain.SettingsPatch) (domain.Settings, error)
}

type serviceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.Validator
	now       func() time.Time
}

// NewService creates a new settings Service instance
func NewService(repo sqlite.Repository) Service {
	return &serviceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(),
		validator: validation.NewValidator(),
		now:       time.Now,
	}
}

// GetSettings returns the user's settings, falling back to defaults when
// the user has never saved any.
func (s *serviceImpl) GetSettings(userID string) (domain.Settings, error) {
	if !s.validator.IsNonEmptyString(userID) {
		return domain.Settings{}, errors.NewInvalidInputError("user_id", userID, "must not be empty")
	}

	row, err := s.repo.GetSettings(userID)
	if err != nil {
		return domain.Settings{}, err
	}
	if row == nil {
		return domain.DefaultSettings(userID), nil
	}
	return s.mapper.Settings.FromDatabase(*row), nil
}

// UpdateSettings applies a partial update and persists the result.
func (s *serviceImpl) UpdateSettings(userID string, patch domain.SettingsPatch) (domain.Settings, error) {
	current, err := s.GetSettings(userID)
	if err != nil {
		return domain.Settings{}, err
	}

	updated := patch.Apply(current)
	if err := validatePatchRanges(updated); err != nil {
		return domain.Settings{}, err
	}

	updated.UpdatedAt = s.now()
	row := s.mapper.Settings.ToDatabase(updated)
	if err := s.repo.SaveSettings(&row); err != nil {
		return domain.Settings{}, err
	}
	return updated, nil
}

// validatePatchRanges performs the basic range and enumeration checks on
// settings values. No business rules live here.
func validatePatchRanges(s domain.Settings) error {
	if s.DefaultHourlyRateCents < 0 {
		return errors.NewInvalidInputError("default_hourly_rate_cents", s.DefaultHourlyRateCents, "must not be negative")
	}
	if s.MaxRetroactiveDays < 0 || s.MaxRetroactiveDays > 365 {
		return errors.NewInvalidInputError("max_retroactive_days", s.MaxRetroactiveDays, "must be between 0 and 365")
	}
	if s.DailyHourWarningMinutes < 0 || s.DailyHourWarningMinutes > 24*60 {
		return errors.NewInvalidInputError("daily_hour_warning_minutes", s.DailyHourWarningMinutes, "must be between 0 and 1440")
	}
	if s.IdleTimeoutMinutes < 0 {
		return errors.NewInvalidInputError("idle_timeout_minutes", s.IdleTimeoutMinutes, "must not be negative")
	}
	if !domain.IsAllowedRoundingIncrement(s.RoundToMinutes) {
		return errors.NewInvalidInputError("round_to_minutes", s.RoundToMinutes,
			fmt.Sprintf("must be one of %v", domain.AllowedRoundingIncrements))
	}
	if s.MinimumEntryMinutes < 0 || s.MinimumEntryMinutes > 60 {
		return errors.NewInvalidInputError("minimum_entry_minutes", s.MinimumEntryMinutes, "must be between 0 and 60")
	}
	return nil
}
