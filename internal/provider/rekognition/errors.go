package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrNoFaceDetected indicates that no face was found in the provided image
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrInvalidImage indicates the image data cannot be processed by Rekognition
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrEmbeddingsNotSupported indicates the operation needs raw embeddings,
	// which Rekognition does not expose
	ErrEmbeddingsNotSupported = errors.New("rekognition does not expose face embeddings")
)
