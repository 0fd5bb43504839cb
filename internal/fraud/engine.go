package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// Indicator names surfaced to callers and persisted on fraud records.
const (
	IndicatorLivenessFailed   = "liveness_failed"
	IndicatorWeakDepth        = "weak_depth_signal"
	IndicatorWeakTexture      = "weak_texture_signal"
	IndicatorWeakMotion       = "weak_motion_signal"
	IndicatorFaceSpoofing     = "face_spoofing_detected"
	IndicatorInvalidLocation  = "invalid_location"
	IndicatorVPN              = "vpn_detected"
	IndicatorLocationSpoofed  = "location_spoofed"
	IndicatorImpossibleSpeed  = "impossible_speed"
	IndicatorProxy            = "proxy_detected"
	IndicatorMultipleFailures = "multiple_failures"
	IndicatorDeviceSwitching  = "device_switching"
	IndicatorLocationJumping  = "location_jumping"
	IndicatorUnusualTime      = "unusual_time_pattern"
	IndicatorDeviceBlocked    = "device_blocklisted"
	IndicatorIPBlocked        = "ip_blocklisted"
	IndicatorRateLimit        = "rate_limit_exceeded"
)

// Score contributions per indicator.
const (
	scoreLivenessFailed   = 0.4
	scoreWeakSubMetric    = 0.1
	scoreInvalidLocation  = 0.3
	scoreVPN              = 0.2
	scoreLocationSpoofed  = 0.3
	scoreImpossibleSpeed  = 0.2
	scoreProxy            = 0.15
	scoreMultipleFailures = 0.2
	scoreDeviceSwitching  = 0.15
	scoreLocationJumping  = 0.25
	scoreUnusualTime      = 0.1
	scoreBlockedDevice    = 0.5
	scoreBlockedIP        = 0.4
	scoreRateLimit        = 0.3

	// weakSubMetricFloor marks an individually deficient liveness sub-score.
	weakSubMetricFloor = 0.3

	// blockThreshold and recordThreshold gate blocking and fraud-record
	// creation respectively.
	blockThreshold  = 0.6
	recordThreshold = 0.4

	rateLimitWindow = 5 * time.Minute
	rateLimitMax    = 10
)

// autoBlockIndicators force a block regardless of the composite score.
var autoBlockIndicators = map[string]struct{}{
	IndicatorFaceSpoofing:    {},
	IndicatorLocationSpoofed: {},
	IndicatorVPN:             {},
}

// Input is one attendance attempt to evaluate. Liveness and Location are
// optional; absent signals contribute nothing.
type Input struct {
	ActorID           string
	DeviceFingerprint string
	IPAddress         string
	GPS               domain.GPSFix
	Liveness          *domain.LivenessResult
	Location          *domain.LocationTrustResult
	Timestamp         time.Time
}

// Evaluation is the engine's verdict for one attempt.
type Evaluation struct {
	FraudScore  float64
	ShouldBlock bool
	Indicators  []string
	Record      *domain.FraudRecord
	Attempt     domain.AttendanceAttempt
}

// Decision maps the verdict onto the caller-facing outcome.
func (e Evaluation) Decision() domain.Decision {
	switch {
	case e.ShouldBlock:
		return domain.DecisionBlock
	case e.FraudScore >= recordThreshold:
		return domain.DecisionFlag
	default:
		return domain.DecisionAccept
	}
}

// Engine combines the analyzer outputs with per-actor history, pattern
// rules and the global blocklists into a composite fraud score. It is the
// only stateful component; evaluations for the same actor are serialized,
// different actors never block each other.
// Notifier is told about fraud records as they are created. Delivery is
// best effort and must not fail the evaluation.
type Notifier interface {
	NotifyFraudRecord(ctx context.Context, record domain.FraudRecord)
}

type Engine struct {
	history   HistoryStore
	blocklist BlocklistStore
	records   RecordStore
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	actors map[string]*sync.Mutex
}

// NewEngine creates a fraud engine on top of the given stores.
func NewEngine(history HistoryStore, blocklist BlocklistStore, records RecordStore, logger *slog.Logger) *Engine {
	return &Engine{
		history:   history,
		blocklist: blocklist,
		records:   records,
		logger:    logger,
		now:       time.Now,
		actors:    make(map[string]*sync.Mutex),
	}
}

// WithNotifier attaches a fraud record notifier.
func (e *Engine) WithNotifier(notifier Notifier) *Engine {
	e.notifier = notifier
	return e
}

func (e *Engine) actorLock(actorID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.actors[actorID]
	if !ok {
		lock = &sync.Mutex{}
		e.actors[actorID] = lock
	}
	return lock
}

// Evaluate scores one attempt, appends it to the actor's history and applies
// the blocking side effects. Store failures abort the evaluation; everything
// else degrades to a zero contribution.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Evaluation, error) {
	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = e.now()
	}

	lock := e.actorLock(in.ActorID)
	lock.Lock()
	defer lock.Unlock()

	var score float64
	var indicators []string
	add := func(indicator string, contribution float64) {
		indicators = append(indicators, indicator)
		score += contribution
	}

	signalsOK := true
	if in.Liveness != nil {
		if !in.Liveness.IsLive {
			signalsOK = false
			add(IndicatorLivenessFailed, scoreLivenessFailed)
			if isFaceSpoofing(in.Liveness.Spoofing) {
				add(IndicatorFaceSpoofing, 0)
			}
		}
		if in.Liveness.Metrics.Depth < weakSubMetricFloor {
			add(IndicatorWeakDepth, scoreWeakSubMetric)
		}
		if in.Liveness.Metrics.Texture < weakSubMetricFloor {
			add(IndicatorWeakTexture, scoreWeakSubMetric)
		}
		if in.Liveness.Metrics.Motion < weakSubMetricFloor {
			add(IndicatorWeakMotion, scoreWeakSubMetric)
		}
	}

	if in.Location != nil {
		if !in.Location.IsValid {
			signalsOK = false
			add(IndicatorInvalidLocation, scoreInvalidLocation)
		}
		if in.Location.Flags.VPN {
			add(IndicatorVPN, scoreVPN)
		}
		if in.Location.Flags.LocationSpoofed {
			add(IndicatorLocationSpoofed, scoreLocationSpoofed)
		}
		if in.Location.Flags.ImpossibleSpeed {
			add(IndicatorImpossibleSpeed, scoreImpossibleSpeed)
		}
		if in.Location.Flags.Proxy {
			add(IndicatorProxy, scoreProxy)
		}
	}

	attempt := domain.AttendanceAttempt{
		ID:                uuid.New(),
		ActorID:           in.ActorID,
		Timestamp:         timestamp,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		GPS:               in.GPS,
		Liveness:          in.Liveness,
		Location:          in.Location,
		Succeeded:         signalsOK,
	}

	recent, err := e.history.Recent(ctx, in.ActorID, patternWindow-1)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load attempt history: %w", err)
	}
	window := append([]domain.AttendanceAttempt{attempt}, recent...)

	if countFailures(window) >= failureThreshold {
		add(IndicatorMultipleFailures, scoreMultipleFailures)
	}
	if countDistinctDevices(window) > deviceSwitchThreshold {
		add(IndicatorDeviceSwitching, scoreDeviceSwitching)
	}
	if hasLocationJump(window) {
		add(IndicatorLocationJumping, scoreLocationJumping)
	}
	if countUnusualHours(window) >= unusualTimeThreshold {
		add(IndicatorUnusualTime, scoreUnusualTime)
	}

	if in.DeviceFingerprint != "" {
		blocked, err := e.blocklist.IsDeviceBlocked(ctx, in.DeviceFingerprint)
		if err != nil {
			return Evaluation{}, fmt.Errorf("check device blocklist: %w", err)
		}
		if blocked {
			add(IndicatorDeviceBlocked, scoreBlockedDevice)
		}
	}
	if in.IPAddress != "" {
		blocked, err := e.blocklist.IsIPBlocked(ctx, in.IPAddress)
		if err != nil {
			return Evaluation{}, fmt.Errorf("check ip blocklist: %w", err)
		}
		if blocked {
			add(IndicatorIPBlocked, scoreBlockedIP)
		}
	}

	count, err := e.history.CountSince(ctx, in.ActorID, timestamp.Add(-rateLimitWindow))
	if err != nil {
		return Evaluation{}, fmt.Errorf("count recent attempts: %w", err)
	}
	if count+1 > rateLimitMax {
		add(IndicatorRateLimit, scoreRateLimit)
	}

	if score > 1 {
		score = 1
	}

	shouldBlock := score >= blockThreshold || hasAutoBlockIndicator(indicators)

	attempt.FraudScore = score
	attempt.Blocked = shouldBlock
	attempt.Succeeded = signalsOK && !shouldBlock

	if err := e.history.Append(ctx, attempt); err != nil {
		return Evaluation{}, fmt.Errorf("append attempt: %w", err)
	}

	evaluation := Evaluation{
		FraudScore:  score,
		ShouldBlock: shouldBlock,
		Indicators:  indicators,
		Attempt:     attempt,
	}

	if score >= recordThreshold {
		record := domain.FraudRecord{
			ID:         uuid.New(),
			ActorID:    in.ActorID,
			Timestamp:  timestamp,
			Type:       classifyFraudType(indicators),
			Severity:   domain.SeverityForScore(score),
			FraudScore: score,
			Indicators: indicators,
			Blocked:    shouldBlock,
		}
		if err := e.records.Create(ctx, record); err != nil {
			return Evaluation{}, fmt.Errorf("create fraud record: %w", err)
		}
		evaluation.Record = &record

		if e.notifier != nil {
			e.notifier.NotifyFraudRecord(ctx, record)
		}
	}

	if shouldBlock {
		if in.DeviceFingerprint != "" {
			if err := e.blocklist.BlockDevice(ctx, in.DeviceFingerprint); err != nil {
				return Evaluation{}, fmt.Errorf("block device: %w", err)
			}
		}
		if in.IPAddress != "" {
			if err := e.blocklist.BlockIP(ctx, in.IPAddress); err != nil {
				return Evaluation{}, fmt.Errorf("block ip: %w", err)
			}
		}
		if e.logger != nil {
			e.logger.Info("attempt blocked",
				slog.String("actor_id", in.ActorID),
				slog.Float64("fraud_score", score),
				slog.Any("indicators", indicators),
			)
		}
	}

	return evaluation, nil
}

func isFaceSpoofing(s domain.SpoofingType) bool {
	switch s {
	case domain.SpoofingPhoto, domain.SpoofingScreen, domain.SpoofingVideo, domain.SpoofingDeepfake:
		return true
	default:
		return false
	}
}

func hasAutoBlockIndicator(indicators []string) bool {
	for _, indicator := range indicators {
		if _, ok := autoBlockIndicators[indicator]; ok {
			return true
		}
	}
	return false
}

// classifyFraudType picks the record type by the highest-priority indicator
// present.
func classifyFraudType(indicators []string) domain.FraudType {
	present := make(map[string]struct{}, len(indicators))
	for _, indicator := range indicators {
		present[indicator] = struct{}{}
	}

	priority := []struct {
		indicator string
		fraudType domain.FraudType
	}{
		{IndicatorFaceSpoofing, domain.FraudFaceSpoofing},
		{IndicatorLocationSpoofed, domain.FraudLocationSpoofing},
		{IndicatorVPN, domain.FraudVPNUsage},
		{IndicatorDeviceSwitching, domain.FraudDeviceMismatch},
		{IndicatorImpossibleSpeed, domain.FraudImpossibleSpeed},
		{IndicatorLocationJumping, domain.FraudImpossibleSpeed},
	}
	for _, p := range priority {
		if _, ok := present[p.indicator]; ok {
			return p.fraudType
		}
	}
	return domain.FraudMultipleAttempts
}
