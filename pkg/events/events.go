// Package events defines the payloads exchanged between scanning, parsing,
// rule and reporting services, and a codec that frames them by kind.
package events

import (
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Kind tags an event payload on the wire.
type Kind string

const (
	KindScanRequest   Kind = "scan_request"
	KindScanResult    Kind = "scan_result"
	KindParseResult   Kind = "parse_result"
	KindFindingsReady Kind = "findings_ready"
	KindReportReady   Kind = "report_ready"
)

// Stream returns the stream name the kind is conventionally published on.
func (k Kind) Stream() string {
	switch k {
	case KindScanRequest:
		return "atlas.scan.requests"
	case KindScanResult:
		return "atlas.scan.results"
	case KindParseResult:
		return "atlas.parse.results"
	case KindFindingsReady:
		return "atlas.findings"
	case KindReportReady:
		return "atlas.reports.ready"
	}
	return ""
}

// DefaultLogDepth is the number of recent builds whose logs a scan fetches.
const DefaultLogDepth = 5

// Event is implemented by every payload.
type Event interface {
	Kind() Kind
	Header() *Base
	Validate() error
}

// Base is carried by every event.
type Base struct {
	EventID   string       `json:"event_id" validate:"required"`
	Timestamp time.Time    `json:"timestamp"`
	Metadata  metadata.Map `json:"metadata"`
}

// NewBase mints an event id and a UTC timestamp.
func NewBase(p ids.Provider) Base {
	p = ids.OrSystem(p)
	return Base{EventID: p.NewID(), Timestamp: p.Now().UTC(), Metadata: metadata.Map{}}
}

func (b *Base) Header() *Base { return b }

func validate(record string, ev Event) error {
	if err := validation.Struct(record, ev); err != nil {
		return err
	}
	return ev.Header().Metadata.Validate()
}

// Record is an untyped JSON object carried inside a payload.
type Record = map[string]any

// ScanRequest asks a scanner to crawl a CI/CD platform. TokenRef names a
// secret; the token itself never travels.
type ScanRequest struct {
	Base
	Platform  graph.Platform `json:"platform" validate:"enum"`
	TargetURL string         `json:"target_url" validate:"required"`
	TokenRef  string         `json:"token_ref"`
	ScanScope Record         `json:"scan_scope"`
	LogDepth  int            `json:"log_depth" validate:"gte=0"`
}

func NewScanRequest(p ids.Provider, platform graph.Platform, targetURL string) *ScanRequest {
	return &ScanRequest{
		Base:      NewBase(p),
		Platform:  platform,
		TargetURL: targetURL,
		ScanScope: Record{},
		LogDepth:  DefaultLogDepth,
	}
}

func (*ScanRequest) Kind() Kind         { return KindScanRequest }
func (e *ScanRequest) Validate() error { return validate("scan_request", e) }

// ScanResult carries raw scanned material to the parser.
type ScanResult struct {
	Base
	ScanRequestID   string         `json:"scan_request_id" validate:"required"`
	Platform        graph.Platform `json:"platform" validate:"enum"`
	PipelineConfigs []Record       `json:"pipeline_configs"`
	BuildLogs       []Record       `json:"build_logs"`
	DocFiles        []Record       `json:"doc_files"`
}

func NewScanResult(p ids.Provider, scanRequestID string, platform graph.Platform) *ScanResult {
	return &ScanResult{
		Base:            NewBase(p),
		ScanRequestID:   scanRequestID,
		Platform:        platform,
		PipelineConfigs: []Record{},
		BuildLogs:       []Record{},
		DocFiles:        []Record{},
	}
}

func (*ScanResult) Kind() Kind         { return KindScanResult }
func (e *ScanResult) Validate() error { return validate("scan_result", e) }

// ReportReady announces a generated report.
type ReportReady struct {
	Base
	ScanRequestID string   `json:"scan_request_id" validate:"required"`
	GraphID       string   `json:"graph_id" validate:"required"`
	ReportID      string   `json:"report_id" validate:"required"`
	Formats       []string `json:"formats"`
}

// DefaultFormats returns markdown and json.
func DefaultFormats() []string { return []string{"markdown", "json"} }

func NewReportReady(p ids.Provider, scanRequestID, graphID, reportID string) *ReportReady {
	return &ReportReady{
		Base:          NewBase(p),
		ScanRequestID: scanRequestID,
		GraphID:       graphID,
		ReportID:      reportID,
		Formats:       DefaultFormats(),
	}
}

func (*ReportReady) Kind() Kind         { return KindReportReady }
func (e *ReportReady) Validate() error { return validate("report_ready", e) }
