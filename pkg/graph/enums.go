package graph

// NodeType tags the structural variant of a node. The set is closed.
type NodeType string

const (
	NodePipeline        NodeType = "pipeline"
	NodeJob             NodeType = "job"
	NodeStage           NodeType = "stage"
	NodeStep            NodeType = "step"
	NodeRepository      NodeType = "repository"
	NodeArtifact        NodeType = "artifact"
	NodeContainerImage  NodeType = "container_image"
	NodeRunner          NodeType = "runner"
	NodeSecretRef       NodeType = "secret_ref"
	NodeEnvironment     NodeType = "environment"
	NodeExternalService NodeType = "external_service"
	NodeDocFile         NodeType = "doc_file"
)

// AllNodeTypes returns every node type in declaration order.
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodePipeline, NodeJob, NodeStage, NodeStep, NodeRepository, NodeArtifact,
		NodeContainerImage, NodeRunner, NodeSecretRef, NodeEnvironment,
		NodeExternalService, NodeDocFile,
	}
}

// Valid reports whether t is one of the twelve node types
func (t NodeType) Valid() bool {
	_, ok := registry[t]
	return ok
}

// EdgeType tags the relationship carried by an edge. The set is closed.
type EdgeType string

const (
	EdgeTriggers  EdgeType = "triggers"
	EdgeCalls     EdgeType = "calls"
	EdgeProduces  EdgeType = "produces"
	EdgeConsumes  EdgeType = "consumes"
	EdgeDependsOn EdgeType = "depends_on"
	EdgeDeploysTo EdgeType = "deploys_to"
	EdgeImports   EdgeType = "imports"
	EdgeExtends   EdgeType = "extends"
	EdgeIncludes  EdgeType = "includes"
)

// AllEdgeTypes returns every edge type in declaration order.
func AllEdgeTypes() []EdgeType {
	return []EdgeType{
		EdgeTriggers, EdgeCalls, EdgeProduces, EdgeConsumes, EdgeDependsOn,
		EdgeDeploysTo, EdgeImports, EdgeExtends, EdgeIncludes,
	}
}

// Valid reports whether t is one of the nine edge types
func (t EdgeType) Valid() bool {
	for _, known := range AllEdgeTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Platform is the CI/CD system a graph was scanned from.
type Platform string

const (
	PlatformJenkins       Platform = "jenkins"
	PlatformGitLab        Platform = "gitlab"
	PlatformGitHubActions Platform = "github_actions"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformJenkins, PlatformGitLab, PlatformGitHubActions:
		return true
	}
	return false
}

// ArtifactType classifies build outputs.
type ArtifactType string

const (
	ArtifactJar         ArtifactType = "jar"
	ArtifactWar         ArtifactType = "war"
	ArtifactDockerImage ArtifactType = "docker_image"
	ArtifactNPMPackage  ArtifactType = "npm_package"
	ArtifactBinary      ArtifactType = "binary"
	ArtifactFile        ArtifactType = "file"
	ArtifactArchive     ArtifactType = "archive"
	ArtifactOther       ArtifactType = "other"
)

func (a ArtifactType) Valid() bool {
	switch a {
	case ArtifactJar, ArtifactWar, ArtifactDockerImage, ArtifactNPMPackage,
		ArtifactBinary, ArtifactFile, ArtifactArchive, ArtifactOther:
		return true
	}
	return false
}

// DocType classifies documentation files found next to pipelines.
type DocType string

const (
	DocReadme         DocType = "readme"
	DocDocsDir        DocType = "docs_dir"
	DocRunbook        DocType = "runbook"
	DocArchitecture   DocType = "architecture"
	DocADR            DocType = "adr"
	DocSecurityPolicy DocType = "security_policy"
	DocCodeowners     DocType = "codeowners"
	DocWiki           DocType = "wiki"
	DocOther          DocType = "other"
)

func (d DocType) Valid() bool {
	switch d {
	case DocReadme, DocDocsDir, DocRunbook, DocArchitecture, DocADR,
		DocSecurityPolicy, DocCodeowners, DocWiki, DocOther:
		return true
	}
	return false
}

// LinkType classifies an edge between nodes of different graphs.
type LinkType string

const (
	LinkSharedArtifact    LinkType = "shared_artifact"
	LinkSharedSecret      LinkType = "shared_secret"
	LinkSharedEnvironment LinkType = "shared_environment"
	LinkCrossTrigger      LinkType = "cross_trigger"
)

func (l LinkType) Valid() bool {
	switch l {
	case LinkSharedArtifact, LinkSharedSecret, LinkSharedEnvironment, LinkCrossTrigger:
		return true
	}
	return false
}

// EdgeType returns the in-graph relationship a cross-project link becomes
// when graphs are flattened.
func (l LinkType) EdgeType() EdgeType {
	switch l {
	case LinkSharedArtifact:
		return EdgeConsumes
	case LinkSharedSecret:
		return EdgeDependsOn
	case LinkSharedEnvironment:
		return EdgeDeploysTo
	default:
		return EdgeTriggers
	}
}

// Ptr returns a pointer to v, for optional attribute fields.
func Ptr[T any](v T) *T {
	return &v
}
