package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/identity"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// TemplateStore persists the registered face template per actor.
type TemplateStore interface {
	Save(ctx context.Context, actorID string, template domain.FaceEmbedding) error
	// Get returns the actor's template or domain.ErrTemplateNotFound.
	Get(ctx context.Context, actorID string) (*domain.FaceEmbedding, error)
}

// EnrollmentService builds a registered face template from one or more
// enrollment captures.
type EnrollmentService struct {
	detector    provider.FaceDetector
	embedder    provider.EmbeddingExtractor
	matcher     *identity.Matcher
	templates   TemplateStore
	auditLogger audit.Logger
}

func NewEnrollmentService(
	detector provider.FaceDetector,
	embedder provider.EmbeddingExtractor,
	matcher *identity.Matcher,
	templates TemplateStore,
	auditLogger audit.Logger,
) *EnrollmentService {
	if auditLogger == nil {
		auditLogger = audit.NewNoOpLogger()
	}
	return &EnrollmentService{
		detector:    detector,
		embedder:    embedder,
		matcher:     matcher,
		templates:   templates,
		auditLogger: auditLogger,
	}
}

// Enroll extracts an embedding from each capture, drops the ones that fail
// validation, averages the survivors into a single template and stores it.
// Captures with zero or multiple faces are skipped, not fatal; enrollment
// only fails when no capture survives.
func (s *EnrollmentService) Enroll(ctx context.Context, actorID string, captures [][]byte) (*domain.FaceEmbedding, error) {
	if len(captures) == 0 {
		return nil, domain.ErrNoEnrollmentCaptures
	}

	valid := make([]domain.FaceEmbedding, 0, len(captures))
	for _, capture := range captures {
		faces, err := s.detector.DetectFaces(ctx, capture)
		if err != nil || len(faces) != 1 {
			continue
		}

		emb, err := s.embedder.ExtractEmbedding(ctx, capture)
		if err != nil {
			continue
		}
		if !s.matcher.Validate(emb) {
			continue
		}

		valid = append(valid, emb)
	}

	if len(valid) == 0 {
		return nil, domain.ErrNoEnrollmentCaptures
	}

	template, err := s.matcher.Average(valid)
	if err != nil {
		return nil, fmt.Errorf("average enrollment captures: %w", err)
	}

	if err := s.templates.Save(ctx, actorID, template); err != nil {
		return nil, fmt.Errorf("save template for actor %s: %w", actorID, err)
	}

	_ = s.auditLogger.Log(ctx, audit.Event{
		ActorID:   actorID,
		EventType: audit.EventEnrollmentCompleted,
		Success:   true,
		Metadata: map[string]string{
			"captures_total": strconv.Itoa(len(captures)),
			"captures_used":  strconv.Itoa(len(valid)),
			"algorithm_id":   template.AlgorithmID,
		},
	})

	return &template, nil
}
