package face_test

import (
	"context"
	"fmt"
	"log"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
)

// ExampleNewProviders_deepface demonstrates how to create a DeepFace provider
func ExampleNewProviders_deepface() {
	ctx := context.Background()

	// Configuration for DeepFace (default provider)
	cfg := &config.Config{
		FaceProvider: "deepface",
		DeepFaceURL:  "http://localhost:5005",
	}

	providers, err := face.NewProviders(ctx, cfg, audit.NewNoOpLogger())
	if err != nil {
		log.Fatalf("failed to create providers: %v", err)
	}

	// Use the detector to find faces
	imageData := []byte("...") // Your image data here
	faces, err := providers.Detector.DetectFaces(ctx, imageData)
	if err != nil {
		log.Fatalf("failed to detect faces: %v", err)
	}

	fmt.Printf("Detected %d faces\n", len(faces))
}

// ExampleNewProviders_rekognition demonstrates how to create a Rekognition provider
func ExampleNewProviders_rekognition() {
	ctx := context.Background()

	// Configuration for AWS Rekognition
	// Requires AWS credentials via environment variables:
	// - AWS_ACCESS_KEY_ID
	// - AWS_SECRET_ACCESS_KEY
	cfg := &config.Config{
		FaceProvider: "rekognition",
		AWSRegion:    "us-east-1",
		DeepFaceURL:  "http://localhost:5005",
	}

	providers, err := face.NewProviders(ctx, cfg, audit.NewNoOpLogger())
	if err != nil {
		log.Fatalf("failed to create providers: %v", err)
	}

	// Rekognition detects faces; embeddings still come from DeepFace
	imageData := []byte("...") // Your image data here
	embedding, err := providers.Embedder.ExtractEmbedding(ctx, imageData)
	if err != nil {
		log.Fatalf("failed to extract embedding: %v", err)
	}

	fmt.Printf("Extracted %s embedding with %d dimensions\n",
		embedding.AlgorithmID, len(embedding.Vector))
}

// ExampleNewProviders_environmentBased demonstrates runtime provider selection
func ExampleNewProviders_environmentBased() {
	ctx := context.Background()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Providers are selected based on FACE_PROVIDER env var
	// - "deepface" -> DeepFace for detection and embeddings
	// - "rekognition" -> Rekognition detection, DeepFace embeddings
	// - "mock" -> deterministic in-process provider
	// - empty or not set -> defaults to DeepFace
	providers, err := face.NewProviders(ctx, cfg, audit.NewNoOpLogger())
	if err != nil {
		log.Fatalf("failed to create providers: %v", err)
	}

	// Use the detector transparently (same interface regardless of backend)
	imageData := []byte("...") // Your image data here
	faces, err := providers.Detector.DetectFaces(ctx, imageData)
	if err != nil {
		log.Fatalf("failed to detect faces: %v", err)
	}

	fmt.Printf("Using provider in %s environment, detected %d faces\n", cfg.Environment, len(faces))
}
