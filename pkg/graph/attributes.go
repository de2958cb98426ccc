package graph

import (
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
)

// Attributes is the variant-specific part of a node. The interface is sealed:
// only the twelve structs in this file implement it, and each one fixes the
// node type it belongs to, so a node's tag and its fields cannot disagree.
type Attributes interface {
	NodeType() NodeType
	clone() Attributes
	withDefaults() Attributes
}

// Pipeline is a CI/CD pipeline definition.
type Pipeline struct {
	Path        *string `json:"path"`
	Branch      *string `json:"branch"`
	TriggerType *string `json:"trigger_type"`
	Agent       *string `json:"agent"`
}

// Job is a job within a pipeline.
type Job struct {
	Parameters     metadata.Map `json:"parameters"`
	Conditions     []string     `json:"conditions"`
	TimeoutMinutes *int         `json:"timeout_minutes" validate:"omitempty,gte=0"`
}

// Stage is a stage within a pipeline or job.
type Stage struct {
	Parallel      bool    `json:"parallel"`
	WhenCondition *string `json:"when_condition"`
	Order         *int    `json:"order"`
}

// Step is an individual build action.
type Step struct {
	Command *string `json:"command"`
	Plugin  *string `json:"plugin"`
	Shell   *string `json:"shell"`
}

// Repository is a source code repository.
type Repository struct {
	URL           *string `json:"url"`
	DefaultBranch *string `json:"default_branch"`
	VCSType       string  `json:"vcs_type"`
}

// Artifact is a build output.
type Artifact struct {
	Path         *string      `json:"path"`
	ArtifactType ArtifactType `json:"artifact_type" validate:"enum"`
}

// ContainerImage is a Docker / OCI image reference.
type ContainerImage struct {
	Registry *string `json:"registry"`
	Tag      *string `json:"tag"`
	Pinned   bool    `json:"pinned"`
	Digest   *string `json:"digest"`
}

// Runner is a CI runner or agent.
type Runner struct {
	Labels       []string `json:"labels"`
	ExecutorType *string  `json:"executor_type"`
}

// SecretRef points at where a secret is defined. It has no field able to hold
// the secret's value; only the key name and its scope are recorded.
type SecretRef struct {
	Key   string  `json:"key"`
	Scope *string `json:"scope"`
}

// Environment is a deployment target.
type Environment struct {
	URL             *string `json:"url"`
	ProtectionLevel *string `json:"protection_level"`
}

// ExternalService is a service the pipeline talks to.
type ExternalService struct {
	URL         *string `json:"url"`
	ServiceType *string `json:"service_type"`
}

// DocFile is a documentation file found in the repository.
type DocFile struct {
	Path         string  `json:"path"`
	DocType      DocType `json:"doc_type" validate:"enum"`
	LastModified *string `json:"last_modified"`
}

func (Pipeline) NodeType() NodeType        { return NodePipeline }
func (Job) NodeType() NodeType             { return NodeJob }
func (Stage) NodeType() NodeType           { return NodeStage }
func (Step) NodeType() NodeType            { return NodeStep }
func (Repository) NodeType() NodeType      { return NodeRepository }
func (Artifact) NodeType() NodeType        { return NodeArtifact }
func (ContainerImage) NodeType() NodeType  { return NodeContainerImage }
func (Runner) NodeType() NodeType          { return NodeRunner }
func (SecretRef) NodeType() NodeType       { return NodeSecretRef }
func (Environment) NodeType() NodeType     { return NodeEnvironment }
func (ExternalService) NodeType() NodeType { return NodeExternalService }
func (DocFile) NodeType() NodeType         { return NodeDocFile }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func (a Pipeline) clone() Attributes {
	return Pipeline{
		Path:        clonePtr(a.Path),
		Branch:      clonePtr(a.Branch),
		TriggerType: clonePtr(a.TriggerType),
		Agent:       clonePtr(a.Agent),
	}
}

func (a Job) clone() Attributes {
	return Job{
		Parameters:     a.Parameters.Clone(),
		Conditions:     cloneStrings(a.Conditions),
		TimeoutMinutes: clonePtr(a.TimeoutMinutes),
	}
}

func (a Stage) clone() Attributes {
	return Stage{Parallel: a.Parallel, WhenCondition: clonePtr(a.WhenCondition), Order: clonePtr(a.Order)}
}

func (a Step) clone() Attributes {
	return Step{Command: clonePtr(a.Command), Plugin: clonePtr(a.Plugin), Shell: clonePtr(a.Shell)}
}

func (a Repository) clone() Attributes {
	return Repository{URL: clonePtr(a.URL), DefaultBranch: clonePtr(a.DefaultBranch), VCSType: a.VCSType}
}

func (a Artifact) clone() Attributes {
	return Artifact{Path: clonePtr(a.Path), ArtifactType: a.ArtifactType}
}

func (a ContainerImage) clone() Attributes {
	return ContainerImage{
		Registry: clonePtr(a.Registry),
		Tag:      clonePtr(a.Tag),
		Pinned:   a.Pinned,
		Digest:   clonePtr(a.Digest),
	}
}

func (a Runner) clone() Attributes {
	return Runner{Labels: cloneStrings(a.Labels), ExecutorType: clonePtr(a.ExecutorType)}
}

func (a SecretRef) clone() Attributes {
	return SecretRef{Key: a.Key, Scope: clonePtr(a.Scope)}
}

func (a Environment) clone() Attributes {
	return Environment{URL: clonePtr(a.URL), ProtectionLevel: clonePtr(a.ProtectionLevel)}
}

func (a ExternalService) clone() Attributes {
	return ExternalService{URL: clonePtr(a.URL), ServiceType: clonePtr(a.ServiceType)}
}

func (a DocFile) clone() Attributes {
	return DocFile{Path: a.Path, DocType: a.DocType, LastModified: clonePtr(a.LastModified)}
}

// withDefaults fills fields whose zero value means "use the default".

func (a Pipeline) withDefaults() Attributes { return a }
func (a Stage) withDefaults() Attributes    { return a }
func (a Step) withDefaults() Attributes     { return a }

func (a Job) withDefaults() Attributes {
	if a.Parameters == nil {
		a.Parameters = metadata.Map{}
	}
	if a.Conditions == nil {
		a.Conditions = []string{}
	}
	return a
}

func (a Repository) withDefaults() Attributes {
	if a.VCSType == "" {
		a.VCSType = "git"
	}
	return a
}

func (a Artifact) withDefaults() Attributes {
	if a.ArtifactType == "" {
		a.ArtifactType = ArtifactFile
	}
	return a
}

func (a ContainerImage) withDefaults() Attributes { return a }

func (a Runner) withDefaults() Attributes {
	if a.Labels == nil {
		a.Labels = []string{}
	}
	return a
}

func (a SecretRef) withDefaults() Attributes       { return a }
func (a Environment) withDefaults() Attributes     { return a }
func (a ExternalService) withDefaults() Attributes { return a }

func (a DocFile) withDefaults() Attributes {
	if a.DocType == "" {
		a.DocType = DocOther
	}
	return a
}
