package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
)

// decoder reconstructs one variant's attributes from a flat node record.
type decoder func(data []byte) (Attributes, error)

func decodeAs[T Attributes](zero T) decoder {
	return func(data []byte) (Attributes, error) {
		v := zero
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v.withDefaults(), nil
	}
}

// registry maps every node type to the decoder of its variant. It drives
// type-directed decoding; a tag missing here is never decoded.
var registry = map[NodeType]decoder{
	NodePipeline:        decodeAs(Pipeline{}),
	NodeJob:             decodeAs(Job{}),
	NodeStage:           decodeAs(Stage{}),
	NodeStep:            decodeAs(Step{}),
	NodeRepository:      decodeAs(Repository{}),
	NodeArtifact:        decodeAs(Artifact{}),
	NodeContainerImage:  decodeAs(ContainerImage{}),
	NodeRunner:          decodeAs(Runner{}),
	NodeSecretRef:       decodeAs(SecretRef{}),
	NodeEnvironment:     decodeAs(Environment{}),
	NodeExternalService: decodeAs(ExternalService{}),
	NodeDocFile:         decodeAs(DocFile{}),
}

// MarshalJSON encodes the node as one flat object: base fields plus the
// variant's fields, with node_type as its string value.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.attrs == nil {
		return nil, NewError("encode").Node(n.id).Cause(ErrMissingAttributes).Err()
	}
	head, err := json.Marshal(n.header())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(n.attrs)
	if err != nil {
		return nil, err
	}
	return mergeObjects(head, body)
}

// UnmarshalJSON decodes a flat node record, dispatching on its node_type.
func (n *Node) UnmarshalJSON(data []byte) error {
	var h struct {
		NodeType NodeType `json:"node_type"`
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return NewError("decode").Node("").Cause(err).Err()
	}
	decoded, err := decodeNode(h.NodeType, data)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// DecodeNode rebuilds a typed node from an untyped record whose declared type
// is tag. The record's own node_type, when present, must equal tag. Unknown
// tags fail with ErrUnknownNodeType; nothing falls back to a base node.
func DecodeNode(tag NodeType, payload map[string]any) (*Node, error) {
	if _, ok := registry[tag]; !ok {
		return nil, NewError("decode").Node(idOf(payload)).Field("node_type").
			Cause(fmt.Errorf("%w: %q", ErrUnknownNodeType, tag)).Err()
	}
	record := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		record[k] = v
	}
	if declared, ok := record["node_type"]; ok {
		if s, _ := declared.(string); NodeType(s) != tag {
			return nil, NewError("decode").Node(idOf(payload)).Field("node_type").
				Cause(fmt.Errorf("%w: payload says %v, declared %q", ErrTypeMismatch, declared, tag)).Err()
		}
	}
	record["node_type"] = string(tag)

	data, err := json.Marshal(record)
	if err != nil {
		return nil, NewError("decode").Node(idOf(payload)).Cause(err).Err()
	}
	return decodeNode(tag, data)
}

// DecodeNodeJSON is DecodeNode for an encoded record.
func DecodeNodeJSON(tag NodeType, data []byte) (*Node, error) {
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, NewError("decode").Node("").Cause(err).Err()
	}
	return DecodeNode(tag, payload)
}

func decodeNode(tag NodeType, data []byte) (*Node, error) {
	decode, ok := registry[tag]
	if !ok {
		return nil, NewError("decode").Node("").Field("node_type").
			Cause(fmt.Errorf("%w: %q", ErrUnknownNodeType, tag)).Err()
	}
	var h nodeHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, NewError("decode").Node("").Cause(err).Err()
	}
	attrs, err := decode(data)
	if err != nil {
		return nil, NewError("decode").Node(h.ID).Cause(err).Err()
	}
	n := &Node{
		id:         h.ID,
		attrs:      attrs,
		Name:       h.Name,
		Platform:   h.Platform,
		Metadata:   h.Metadata,
		Source:     h.Source,
		Confidence: h.Confidence,
	}
	n.Metadata, n.Source, n.Confidence = fillProvenance(h.Metadata, h.Source, h.Confidence)
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Registry returns the node types that can be decoded.
func Registry() []NodeType {
	out := make([]NodeType, 0, len(registry))
	for _, t := range AllNodeTypes() {
		if _, ok := registry[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// fillProvenance applies the constructor defaults to fields a record omitted.
func fillProvenance(m metadata.Map, src confidence.Source, lvl confidence.Level) (metadata.Map, confidence.Source, confidence.Level) {
	def := confidence.Default()
	if m == nil {
		m = metadata.Map{}
	}
	if src == "" {
		src = def.Source
	}
	if lvl == "" {
		lvl = def.Level
	}
	return m, src, lvl
}

func idOf(payload map[string]any) string {
	id, _ := payload["id"].(string)
	return id
}

// mergeObjects joins two encoded JSON objects into one. Keys of b win.
func mergeObjects(a, b []byte) ([]byte, error) {
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(a, &merged); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal(b, &extra); err != nil {
		return nil, err
	}
	for k, v := range extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}
