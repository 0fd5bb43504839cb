package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// AttendanceResponse represents the decision for one attendance attempt
type AttendanceResponse struct {
	AttemptID   string                 `json:"attempt_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Decision    string                 `json:"decision" example:"accept"`
	Succeeded   bool                   `json:"succeeded" example:"true"`
	InsideFence bool                   `json:"inside_fence" example:"true"`
	FenceName   string                 `json:"fence_name,omitempty" example:"headquarters"`
	Liveness    *LivenessData          `json:"liveness,omitempty"`
	Identity    *IdentityMatchData     `json:"identity,omitempty"`
	Location    *LocationTrustData     `json:"location,omitempty"`
	FraudScore  float64                `json:"fraud_score" example:"0.1"`
	Indicators  []string               `json:"indicators,omitempty" example:"[]"`
}

// LivenessData represents the liveness verdict for the capture
type LivenessData struct {
	IsLive     bool     `json:"is_live" example:"true"`
	Confidence float64  `json:"confidence" example:"0.95"`
	Spoofing   []string `json:"spoofing,omitempty" example:"[]"`
}

// IdentityMatchData represents the face match against the enrolled template
type IdentityMatchData struct {
	Match      bool    `json:"match" example:"true"`
	Similarity float64 `json:"similarity" example:"0.92"`
	Distance   float64 `json:"distance" example:"0.31"`
}

// LocationTrustData represents the location plausibility assessment
type LocationTrustData struct {
	Trusted    bool     `json:"trusted" example:"true"`
	Indicators []string `json:"indicators,omitempty" example:"[]"`
}

// EnrollResponse represents a completed enrollment
type EnrollResponse struct {
	ActorID           string  `json:"actor_id" example:"employee-123"`
	AlgorithmID       string  `json:"algorithm_id" example:"rekognition-v1"`
	QualityConfidence float64 `json:"quality_confidence" example:"0.97"`
	CapturedAt        string  `json:"captured_at" example:"2024-01-01T00:00:00Z"`
}

// FraudRecordData represents one fraud record in the review surface
type FraudRecordData struct {
	ID         string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ActorID    string   `json:"actor_id" example:"employee-123"`
	Timestamp  string   `json:"timestamp" example:"2024-01-01T12:00:00Z"`
	Type       string   `json:"type" example:"face_spoofing"`
	Severity   string   `json:"severity" example:"high"`
	FraudScore float64  `json:"fraud_score" example:"0.85"`
	Indicators []string `json:"indicators" example:"face_spoofing_detected"`
	Blocked    bool     `json:"blocked" example:"true"`
	Resolved   bool     `json:"resolved" example:"false"`
}

// FraudRecordListData wraps the fraud record listing
type FraudRecordListData struct {
	Records []FraudRecordData `json:"records"`
}

// ResolveData confirms a resolution state change
type ResolveData struct {
	ID       string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Resolved bool   `json:"resolved" example:"true"`
}

// GeofenceData represents one geofence
type GeofenceData struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name         string  `json:"name" example:"headquarters"`
	Kind         string  `json:"kind" example:"radius"`
	Active       bool    `json:"active" example:"true"`
	RadiusMeters float64 `json:"radius_meters" example:"150"`
}

// GeofenceListData wraps the geofence listing
type GeofenceListData struct {
	Geofences []GeofenceData `json:"geofences"`
}

// StatsData represents the aggregate attendance metrics for a time window
type StatsData struct {
	WindowStart            string  `json:"window_start" example:"2024-01-01T00:00:00Z"`
	WindowEnd              string  `json:"window_end" example:"2024-01-02T00:00:00Z"`
	Attempts               int64   `json:"attempts" example:"120"`
	Accepted               int64   `json:"accepted" example:"110"`
	Blocked                int64   `json:"blocked" example:"4"`
	DistinctActors         int64   `json:"distinct_actors" example:"35"`
	AvgFraudScore          float64 `json:"avg_fraud_score" example:"0.12"`
	FraudRecords           int64   `json:"fraud_records" example:"6"`
	UnresolvedFraudRecords int64   `json:"unresolved_fraud_records" example:"2"`
}

// SessionData represents an issued admin session token
type SessionData struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiJ9..."`
	ExpiresIn int    `json:"expires_in" example:"3600"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger builds the OpenAPI document for the attendance trust API.
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Presenca Attendance Trust API",
		Version:     "v1.0.0",
		Description: "Multi-signal attendance verification combining geofencing, liveness detection, identity matching and location trust analysis",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	adminErrors := []response.Response{
		response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	endpoints := []*endpoint.EndPoint{
		// POST /v1/attendance - Mark attendance
		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Evaluate an attendance attempt"),
			endpoint.WithDescription("Runs the full trust pipeline for one attempt: geofence containment, liveness analysis, identity matching, location trust and fraud scoring. Always returns 200 with the decision, including flagged and blocked attempts."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceResponse{}, "200", "Attempt evaluated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Image is missing, too large or not a supported type"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "No enrollment template for actor"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/enroll - Enroll actor
		endpoint.New(
			endpoint.POST,
			"/enroll",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll an actor's face template"),
			endpoint.WithDescription("Builds the reference embedding from one or more capture images. Re-enrolling an actor replaces the stored template."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "201", "Actor enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "actor_id is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_ENROLLMENT_CAPTURES", Message: "At least one capture image is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Image is too large or not a supported type"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/admin/fraud-records - List fraud records
		endpoint.New(
			endpoint.GET,
			"/admin/fraud-records",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("List fraud records"),
			endpoint.WithDescription("Lists fraud records newest first, optionally filtered by actor"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("actor_id", parameter.Query, parameter.WithDescription("Filter records to one actor")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum records to return (1-500, default: 50)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FraudRecordListData{}, "200", "Records listed successfully"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// GET /v1/admin/fraud-records/{id} - Get fraud record
		endpoint.New(
			endpoint.GET,
			"/admin/fraud-records/{id}",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Get a fraud record"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Record UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FraudRecordData{}, "200", "Record found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FRAUD_RECORD_NOT_FOUND", Message: "Fraud record not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// POST /v1/admin/fraud-records/{id}/resolve - Resolve fraud record
		endpoint.New(
			endpoint.POST,
			"/admin/fraud-records/{id}/resolve",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Resolve a fraud record"),
			endpoint.WithDescription("Marks a fraud record as reviewed. Send {\"resolved\": false} to reopen."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Record UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ResolveData{}, "200", "Record updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FRAUD_RECORD_NOT_FOUND", Message: "Fraud record not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// POST /v1/admin/unblock/device - Unblock device
		endpoint.New(
			endpoint.POST,
			"/admin/unblock/device",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Remove a device fingerprint from the blocklist"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Device unblocked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "fingerprint is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// POST /v1/admin/unblock/ip - Unblock IP
		endpoint.New(
			endpoint.POST,
			"/admin/unblock/ip",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Remove an IP address from the blocklist"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "IP unblocked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "ip_address is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// GET /v1/admin/geofences - List geofences
		endpoint.New(
			endpoint.GET,
			"/admin/geofences",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("List all geofences"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(GeofenceListData{}, "200", "Geofences listed successfully"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// POST /v1/admin/geofences - Create geofence
		endpoint.New(
			endpoint.POST,
			"/admin/geofences",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Create a geofence"),
			endpoint.WithDescription("Creates a radius or polygon geofence. Radius fences need a center and positive radius_meters; polygon fences need at least three vertices."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(GeofenceData{}, "201", "Geofence created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid geofence definition"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "GEOFENCE_EXISTS", Message: "Geofence already exists"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// PATCH /v1/admin/geofences/{id}/active - Toggle geofence
		endpoint.New(
			endpoint.PATCH,
			"/admin/geofences/{id}/active",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Activate or deactivate a geofence"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Record UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(GeofenceData{}, "200", "Geofence updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "GEOFENCE_NOT_FOUND", Message: "Geofence not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// DELETE /v1/admin/geofences/{id} - Delete geofence
		endpoint.New(
			endpoint.DELETE,
			"/admin/geofences/{id}",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Delete a geofence"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Record UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Geofence deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "GEOFENCE_NOT_FOUND", Message: "Geofence not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// GET /v1/admin/stats - Aggregate metrics
		endpoint.New(
			endpoint.GET,
			"/admin/stats",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Aggregate attendance metrics"),
			endpoint.WithDescription("Computes attempt and fraud counters over a trailing window ending now"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("hours", parameter.Query, parameter.WithDescription("Window size in hours (1-720, default: 24)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatsData{}, "200", "Metrics computed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "hours must be between 1 and 720"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing admin key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),

		// POST /v1/admin/session - Issue session token
		endpoint.New(
			endpoint.POST,
			"/admin/session",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Issue a short-lived session token"),
			endpoint.WithDescription("Exchanges the static admin key for a signed session token that dashboards can use on subsequent requests"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionData{}, "201", "Session token issued"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"AdminKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
