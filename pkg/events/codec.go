package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"github.com/Matza-labs/atlas-sdk/pkg/masking"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
)

// ErrUnknownKind is returned when decoding a payload whose kind has no
// registered type.
var ErrUnknownKind = errors.New("unknown event kind")

var kinds = map[Kind]func() Event{
	KindScanRequest:   func() Event { return &ScanRequest{} },
	KindScanResult:    func() Event { return &ScanResult{} },
	KindParseResult:   func() Event { return &ParseResult{} },
	KindFindingsReady: func() Event { return &FindingsReady{} },
	KindReportReady:   func() Event { return &ReportReady{} },
}

// Kinds lists every registered kind.
func Kinds() []Kind {
	return []Kind{KindScanRequest, KindScanResult, KindParseResult, KindFindingsReady, KindReportReady}
}

// envelope frames a payload. Exactly one of Payload and Snappy is set.
type envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Snappy  []byte          `json:"snappy,omitempty"`
}

// Codec encodes events into kind-tagged envelopes. With Compress set the
// payload is snappy-compressed. Decode accepts both forms either way.
type Codec struct {
	Compress bool
	Metrics  *metrics.Registry

	// Masker, when set, redacts credentials in the payload before framing.
	Masker *masking.Masker
}

// Encode validates ev and frames it.
func (c Codec) Encode(ev Event) ([]byte, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}
	if c.Masker != nil {
		if payload, err = c.Masker.JSON(payload); err != nil {
			return nil, fmt.Errorf("mask %s: %w", ev.Kind(), err)
		}
	}

	env := envelope{Kind: ev.Kind()}
	if c.Compress {
		env.Snappy = snappy.Encode(nil, payload)
	} else {
		env.Payload = payload
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}
	c.Metrics.RecordEventEncoded(string(ev.Kind()), c.Compress, len(out))
	return out, nil
}

// Decode restores the event framed in data.
func (c Codec) Decode(data []byte) (Event, error) {
	ev, err := decode(data)
	if err != nil {
		c.Metrics.RecordDecodeFailure("event")
		return nil, err
	}
	return ev, nil
}

func decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	factory, ok := kinds[env.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}

	payload := []byte(env.Payload)
	if len(env.Snappy) > 0 {
		var err error
		payload, err = snappy.Decode(nil, env.Snappy)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", env.Kind, err)
		}
	}

	ev := factory()
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}
