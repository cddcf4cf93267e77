package core

// PayloadKind tags the shape of a tool result payload. There is one shape per
// analytics tier plus an error marker, so consumers can access fields
// type-safely instead of digging through untyped maps.
type PayloadKind string

const (
	KindFoundation PayloadKind = "foundation"
	KindDiagnosis  PayloadKind = "diagnosis"
	KindForecast   PayloadKind = "forecast"
	KindAction     PayloadKind = "action"
	KindError      PayloadKind = "error"
)

// Payload is the result of a single tool invocation.
type Payload interface {
	Kind() PayloadKind
}

// FoundationPayload is produced by descriptive (tier 1) tools. Insights is the
// list-valued field the consolidator extracts as key findings.
type FoundationPayload struct {
	Status   string             `json:"status,omitempty"`
	Insights []string           `json:"insights"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

func (p *FoundationPayload) Kind() PayloadKind { return KindFoundation }

// DiagnosisPayload is produced by diagnostic (tier 2) tools.
type DiagnosisPayload struct {
	Causes          []string `json:"causes"`
	Severity        string   `json:"severity,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (p *DiagnosisPayload) Kind() PayloadKind { return KindDiagnosis }

// ForecastPoint is a single day of a demand forecast.
type ForecastPoint struct {
	Date       string  `json:"date"`
	Demand     float64 `json:"demand"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ForecastPayload is produced by predictive (tier 3) tools.
type ForecastPayload struct {
	TotalForecast   float64         `json:"total_forecast"`
	AverageDaily    float64         `json:"average_daily,omitempty"`
	HorizonDays     int             `json:"horizon_days,omitempty"`
	Points          []ForecastPoint `json:"points,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

func (p *ForecastPayload) Kind() PayloadKind { return KindForecast }

// ActionPayload is produced by prescriptive (tier 4) tools. SpecificActions
// carries the concrete, ordered action items; the consolidator promotes
// urgent entries into the critical recommendation bucket.
type ActionPayload struct {
	SpecificActions []string `json:"specific_actions"`
	Priority        string   `json:"priority,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (p *ActionPayload) Kind() PayloadKind { return KindAction }

// ErrorPayload marks a failed tool invocation. Code distinguishes lookup
// failures (unknown item/category/supplier) from execution failures.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *ErrorPayload) Kind() PayloadKind { return KindError }

func (p *ErrorPayload) Error() string { return p.Message }

// Error codes carried by ErrorPayload.
const (
	ErrCodeNotFound  = "NOT_FOUND"
	ErrCodeBadInput  = "BAD_INPUT"
	ErrCodeExecution = "EXECUTION_FAILED"
)
