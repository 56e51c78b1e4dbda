package handler

import (
	"errors"
	"fmt"
	"testing"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/middleware"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRecruitmentError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", fmt.Errorf("%w: bad threshold", recruitment.ErrInvalidInput), fiber.StatusBadRequest},
		{"not found", fmt.Errorf("%w: record not found", recruitment.ErrNotFound), fiber.StatusNotFound},
		{"conflict", fmt.Errorf("%w: job is closed", recruitment.ErrConflict), fiber.StatusConflict},
		{"internal", fmt.Errorf("%w: boom", recruitment.ErrInternal), fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var appErr *middleware.AppError
			require.True(t, errors.As(mapRecruitmentError(tc.err), &appErr))
			assert.Equal(t, tc.status, appErr.StatusCode)
		})
	}
}

func TestMapRecruitmentErrorCarriesValidationFailures(t *testing.T) {
	err := &pipeline.ValidationError{Failures: []string{"phone is required"}}

	var appErr *middleware.AppError
	require.True(t, errors.As(mapRecruitmentError(err), &appErr))
	assert.Equal(t, fiber.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Equal(t, dto.ValidationFailureResponse{Failures: []string{"phone is required"}}, appErr.Data)
}

func TestClientMessageStripsSentinel(t *testing.T) {
	err := fmt.Errorf("%w: threshold 40 not in [50,100]", recruitment.ErrInvalidInput)
	assert.Equal(t, "threshold 40 not in [50,100]", clientMessage(err))
	assert.Equal(t, "plain", clientMessage(errors.New("plain")))
}
