package graph

import (
	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Node is a typed structural element of a scanned CI/CD system.
//
// The identifier is minted once by NewNode and never changes. The node type
// is not stored separately: it is read from the attributes, which is what
// keeps the tag and the variant fields in agreement.
type Node struct {
	id    string
	attrs Attributes

	Name       string
	Platform   *Platform
	Metadata   metadata.Map
	Source     confidence.Source
	Confidence confidence.Level
}

// NodeOption customizes a node at construction.
type NodeOption func(*Node)

// WithPlatform sets the platform tag.
func WithPlatform(p Platform) NodeOption {
	return func(n *Node) { n.Platform = &p }
}

// WithMetadata attaches a deep copy of m.
func WithMetadata(m metadata.Map) NodeOption {
	return func(n *Node) { n.Metadata = m.Clone() }
}

// WithProvenance records how the node was established.
func WithProvenance(s confidence.Score) NodeOption {
	return func(n *Node) {
		n.Source = s.Source
		n.Confidence = s.Level
	}
}

// WithNodeID pins the identifier instead of minting one. Intended for
// fixtures and replays of previously issued ids.
func WithNodeID(id string) NodeOption {
	return func(n *Node) { n.id = id }
}

// NewNode builds and validates a node of the variant given by attrs.
// Provenance defaults to static/medium.
func NewNode(p ids.Provider, name string, attrs Attributes, opts ...NodeOption) (*Node, error) {
	if attrs == nil {
		return nil, NewError("create").Node("").Cause(ErrMissingAttributes).Err()
	}
	def := confidence.Default()
	n := &Node{
		attrs:      attrs.clone().withDefaults(),
		Name:       name,
		Metadata:   metadata.Map{},
		Source:     def.Source,
		Confidence: def.Level,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.id == "" {
		n.id = ids.OrSystem(p).NewID()
	}
	if n.Metadata == nil {
		n.Metadata = metadata.Map{}
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// ID returns the node identifier
func (n *Node) ID() string { return n.id }

// Type returns the node type, derived from the attributes.
func (n *Node) Type() NodeType {
	if n.attrs == nil {
		return ""
	}
	return n.attrs.NodeType()
}

// Attributes returns a copy of the variant-specific fields. Use a type switch
// or As to reach the concrete variant.
func (n *Node) Attributes() Attributes {
	if n.attrs == nil {
		return nil
	}
	return n.attrs.clone()
}

// Provenance returns the node's confidence without reasoning.
func (n *Node) Provenance() confidence.Score {
	return confidence.Score{Level: n.Confidence, Source: n.Source}
}

// As returns the node's attributes as variant T when the node is of that type.
func As[T Attributes](n *Node) (T, bool) {
	var zero T
	if n == nil || n.attrs == nil {
		return zero, false
	}
	v, ok := n.attrs.clone().(T)
	return v, ok
}

// Clone returns a deep copy sharing no maps or slices with n.
func (n *Node) Clone() *Node {
	clone := *n
	if n.attrs != nil {
		clone.attrs = n.attrs.clone()
	}
	clone.Platform = clonePtr(n.Platform)
	clone.Metadata = n.Metadata.Clone()
	return &clone
}

// Validate checks the base record and the variant fields.
func (n *Node) Validate() error {
	if n.attrs == nil {
		return NewError("validate").Node(n.id).Cause(ErrMissingAttributes).Err()
	}
	h := n.header()
	if err := validation.Struct("node", &h); err != nil {
		return NewError("validate").Node(n.id).Cause(err).Err()
	}
	if err := validation.Struct("node", n.attrs); err != nil {
		return NewError("validate").Node(n.id).Cause(err).Err()
	}
	if err := n.Metadata.Validate(); err != nil {
		return NewError("validate").Node(n.id).Field("metadata").Cause(err).Err()
	}
	if job, ok := n.attrs.(Job); ok {
		if err := job.Parameters.Validate(); err != nil {
			return NewError("validate").Node(n.id).Field("parameters").Cause(err).Err()
		}
	}
	return nil
}

// nodeHeader is the base part of a node's wire form.
type nodeHeader struct {
	ID         string            `json:"id" validate:"required"`
	NodeType   NodeType          `json:"node_type" validate:"enum"`
	Name       string            `json:"name" validate:"required"`
	Platform   *Platform         `json:"platform" validate:"omitempty,enum"`
	Metadata   metadata.Map      `json:"metadata"`
	Source     confidence.Source `json:"source" validate:"enum"`
	Confidence confidence.Level  `json:"confidence" validate:"enum"`
}

func (n *Node) header() nodeHeader {
	return nodeHeader{
		ID:         n.id,
		NodeType:   n.Type(),
		Name:       n.Name,
		Platform:   n.Platform,
		Metadata:   n.Metadata,
		Source:     n.Source,
		Confidence: n.Confidence,
	}
}
