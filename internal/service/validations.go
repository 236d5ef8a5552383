package service

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/limbo/wellness/internal/analytics"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/pkg/entity"
)

const (
	maxExerciseMinutes = 24 * 60
	maxSleepHours      = 24
	defaultExercise    = "Cardio"
	defaultSleep       = "😐"
)

var (
	ExerciseTypes = []string{"Cardio", "Strength", "Yoga", "Stretching", "Other"}
	MealTypes     = []string{"Breakfast", "Lunch", "Dinner", "Snack"}
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		validate.RegisterValidation("record_kind", func(fl validator.FieldLevel) bool {
			return entity.RecordKind(fl.Field().String()).Valid()
		})
		validate.RegisterStructValidation(recordStructLevel, RecordRequest{})
	})
}

// recordStructLevel checks the fields belonging to the request's kind.
func recordStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(RecordRequest)
	switch req.Kind {
	case entity.KindMood:
		if !analytics.IsMoodSymbol(req.Mood) {
			sl.ReportError(req.Mood, "Mood", "Mood", "mood_symbol", "")
		}
	case entity.KindExercise:
		if req.Minutes < 1 || req.Minutes > maxExerciseMinutes {
			sl.ReportError(req.Minutes, "Minutes", "Minutes", "range", "1..1440")
		}
		if req.ExerciseType != "" && !slices.Contains(ExerciseTypes, req.ExerciseType) {
			sl.ReportError(req.ExerciseType, "ExerciseType", "ExerciseType", "oneof", strings.Join(ExerciseTypes, " "))
		}
	case entity.KindSleep:
		if req.Hours <= 0 || req.Hours > maxSleepHours {
			sl.ReportError(req.Hours, "Hours", "Hours", "range", "(0..24]")
		}
		if req.Quality != "" && !analytics.IsSleepQuality(req.Quality) {
			sl.ReportError(req.Quality, "Quality", "Quality", "sleep_quality", "")
		}
	case entity.KindMeal:
		if !slices.Contains(MealTypes, req.MealType) {
			sl.ReportError(req.MealType, "MealType", "MealType", "oneof", strings.Join(MealTypes, " "))
		}
		if strings.TrimSpace(req.Description) == "" {
			sl.ReportError(req.Description, "Description", "Description", "required", "")
		}
	}
}

// validateStruct runs the validator and folds field errors under ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		err = errorvalues.ErrValidation
		for _, fieldErr := range validationErrors {
			err = errors.Join(err, fieldErr)
		}
		return err
	}
	return errors.New("validation unexpected error: " + err.Error())
}

// payloadOf keeps the fields of the request's kind and applies defaults.
func payloadOf(req *RecordRequest) entity.RecordPayload {
	p := entity.RecordPayload{Notes: req.Notes}
	switch req.Kind {
	case entity.KindMood:
		p.Mood = req.Mood
		p.Journal = req.Journal
	case entity.KindExercise:
		p.Minutes = req.Minutes
		p.ExerciseType = req.ExerciseType
		if p.ExerciseType == "" {
			p.ExerciseType = defaultExercise
		}
	case entity.KindSleep:
		p.Hours = req.Hours
		p.Quality = req.Quality
		if p.Quality == "" {
			p.Quality = defaultSleep
		}
	case entity.KindMeal:
		p.MealType = req.MealType
		p.Description = strings.TrimSpace(req.Description)
	}
	return p
}
