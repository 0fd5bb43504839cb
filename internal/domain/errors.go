package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing credentials",
		StatusCode: 401,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Biometric input errors. These always fail closed: the caller never
	// receives a trusting verdict alongside them.
	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the capture",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, capture must contain a single face",
		StatusCode: 422,
	}

	ErrEmbeddingDimension = &AppError{
		Code:       "EMBEDDING_DIMENSION_MISMATCH",
		Message:    "Embedding vector length does not match the algorithm dimensionality",
		StatusCode: 422,
	}

	ErrEmbeddingInvalid = &AppError{
		Code:       "EMBEDDING_INVALID",
		Message:    "Embedding contains non-finite values or fails quality checks",
		StatusCode: 422,
	}

	ErrAlgorithmMismatch = &AppError{
		Code:       "ALGORITHM_MISMATCH",
		Message:    "Embeddings were produced by different algorithms and cannot be compared",
		StatusCode: 422,
	}

	ErrNoEnrollmentCaptures = &AppError{
		Code:       "NO_ENROLLMENT_CAPTURES",
		Message:    "At least one valid capture is required for enrollment",
		StatusCode: 422,
	}

	ErrTemplateNotFound = &AppError{
		Code:       "TEMPLATE_NOT_FOUND",
		Message:    "No registered face template for this actor",
		StatusCode: 404,
	}

	ErrGeofenceExists = &AppError{
		Code:       "GEOFENCE_EXISTS",
		Message:    "A geofence with this identifier already exists",
		StatusCode: 409,
	}

	ErrGeofenceNotFound = &AppError{
		Code:       "GEOFENCE_NOT_FOUND",
		Message:    "Geofence not found",
		StatusCode: 404,
	}

	ErrFraudRecordNotFound = &AppError{
		Code:       "FRAUD_RECORD_NOT_FOUND",
		Message:    "Fraud record not found",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}
)
