package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/movierec/internal/shared"
	"github.com/go-playground/validator/v10"
)

// Model defines the base interface for all persistent models.
type Model interface {
	Validate() error // Validate checks column constraints and returns an error wrapping [shared.ErrInvalidInput]
	String() string  // String renders the model for logs
}

// Repository defines the data access operations shared by every repository.
type Repository[T Model] interface {
	Get(ctx context.Context, id int64) (T, error) // Get retrieves a model by its ID
	Count(ctx context.Context) (int, error)       // Count returns the number of stored models
	DeleteAll(ctx context.Context) (int64, error) // DeleteAll removes every model and returns the number removed
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct runs the validator over s and flattens field errors into one message.
func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(messages, "; "))
}
