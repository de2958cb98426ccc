package graph

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSeq() *ids.Sequence {
	return ids.NewSequence("id", epoch, time.Second)
}

// sampleAttributes returns one populated value of every variant.
func sampleAttributes() []Attributes {
	return []Attributes{
		Pipeline{Path: Ptr("Jenkinsfile"), Branch: Ptr("main"), TriggerType: Ptr("push")},
		Job{Parameters: metadata.Map{"env": "prod", "retries": 3}, Conditions: []string{"branch == main"}, TimeoutMinutes: Ptr(30)},
		Stage{Parallel: true, WhenCondition: Ptr("tag"), Order: Ptr(2)},
		Step{Command: Ptr("make test"), Shell: Ptr("bash")},
		Repository{URL: Ptr("https://git.example.com/app.git"), DefaultBranch: Ptr("main")},
		Artifact{Path: Ptr("build/app.jar"), ArtifactType: ArtifactJar},
		ContainerImage{Registry: Ptr("ghcr.io/acme/app"), Tag: Ptr("1.2.3"), Pinned: true, Digest: Ptr("sha256:abc")},
		Runner{Labels: []string{"linux", "x64"}, ExecutorType: Ptr("docker")},
		SecretRef{Key: "DEPLOY_TOKEN", Scope: Ptr("project")},
		Environment{URL: Ptr("https://prod.example.com"), ProtectionLevel: Ptr("required_reviewers")},
		ExternalService{URL: Ptr("https://sonar.example.com"), ServiceType: Ptr("sonarqube")},
		DocFile{Path: "docs/runbook.md", DocType: DocRunbook, LastModified: Ptr("2026-01-01")},
	}
}

func TestNewNode_Defaults(t *testing.T) {
	n, err := NewNode(newSeq(), "build", Repository{})
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	if n.ID() != "id-1" {
		t.Errorf("ID = %q, want id-1", n.ID())
	}
	if n.Type() != NodeRepository {
		t.Errorf("Type = %q, want repository", n.Type())
	}
	if n.Source != confidence.SourceStatic || n.Confidence != confidence.LevelMedium {
		t.Errorf("provenance = %s/%s, want static/medium", n.Source, n.Confidence)
	}
	if n.Metadata == nil {
		t.Error("Metadata should default to an empty map")
	}
	repo, ok := As[Repository](n)
	if !ok {
		t.Fatal("As[Repository] failed")
	}
	if repo.VCSType != "git" {
		t.Errorf("VCSType = %q, want git", repo.VCSType)
	}
	if _, ok := As[Job](n); ok {
		t.Error("As[Job] should fail on a repository node")
	}
}

func TestNewNode_Options(t *testing.T) {
	n, err := NewNode(newSeq(), "deploy", Job{},
		WithNodeID("job-7"),
		WithPlatform(PlatformGitLab),
		WithProvenance(confidence.High()),
		WithMetadata(metadata.Map{"file": ".gitlab-ci.yml"}))
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	if n.ID() != "job-7" {
		t.Errorf("ID = %q, want job-7", n.ID())
	}
	if n.Platform == nil || *n.Platform != PlatformGitLab {
		t.Errorf("Platform = %v, want gitlab", n.Platform)
	}
	if n.Provenance() != confidence.High() {
		t.Errorf("Provenance = %+v, want High()", n.Provenance())
	}
}

func TestNewNode_Rejections(t *testing.T) {
	if _, err := NewNode(newSeq(), "x", nil); !errors.Is(err, ErrMissingAttributes) {
		t.Errorf("nil attributes: err = %v, want ErrMissingAttributes", err)
	}
	if _, err := NewNode(newSeq(), "", Step{}); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("empty name: err = %v, want validation failure", err)
	}
	if _, err := NewNode(newSeq(), "a", Artifact{ArtifactType: "tarball"}); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("bad artifact type: err = %v, want validation failure", err)
	}
	if _, err := NewNode(newSeq(), "j", Job{TimeoutMinutes: Ptr(-1)}); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("negative timeout: err = %v, want validation failure", err)
	}
	if _, err := NewNode(newSeq(), "p", Pipeline{}, WithPlatform("bamboo")); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("bad platform: err = %v, want validation failure", err)
	}
	var me *ModelError
	_, err := NewNode(newSeq(), "p", Pipeline{}, WithMetadata(metadata.Map{"ch": make(chan int)}))
	if !errors.As(err, &me) || me.Field != "metadata" {
		t.Errorf("bad metadata: err = %v, want ModelError on metadata", err)
	}
}

func TestNode_RoundTripEveryVariant(t *testing.T) {
	seq := newSeq()
	for _, attrs := range sampleAttributes() {
		t.Run(string(attrs.NodeType()), func(t *testing.T) {
			orig, err := NewNode(seq, "n-"+string(attrs.NodeType()), attrs,
				WithPlatform(PlatformJenkins),
				WithMetadata(metadata.Map{"line": 12, "tags": []string{"a", "b"}}))
			if err != nil {
				t.Fatalf("NewNode failed: %v", err)
			}
			data, err := json.Marshal(orig)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("Unmarshal to map failed: %v", err)
			}
			if payload["node_type"] != string(attrs.NodeType()) {
				t.Errorf("node_type = %v, want %q", payload["node_type"], attrs.NodeType())
			}

			decoded, err := DecodeNode(attrs.NodeType(), payload)
			if err != nil {
				t.Fatalf("DecodeNode failed: %v", err)
			}
			if decoded.Type() != attrs.NodeType() {
				t.Errorf("decoded type = %q, want %q", decoded.Type(), attrs.NodeType())
			}
			if decoded.ID() != orig.ID() {
				t.Errorf("decoded id = %q, want %q", decoded.ID(), orig.ID())
			}
			if !reflect.DeepEqual(decoded, orig) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", decoded, orig)
			}

			var viaJSON Node
			if err := json.Unmarshal(data, &viaJSON); err != nil {
				t.Fatalf("Node.UnmarshalJSON failed: %v", err)
			}
			if !reflect.DeepEqual(&viaJSON, orig) {
				t.Errorf("UnmarshalJSON mismatch:\n got  %+v\n want %+v", &viaJSON, orig)
			}
		})
	}
}

func TestRoundTrip_IntegerValues(t *testing.T) {
	seq := newSeq()
	job, err := NewNode(seq, "build", Job{Parameters: metadata.Map{"retries": 3, "nested": metadata.Map{"max": int64(5)}}},
		WithMetadata(metadata.Map{"line": 12, "size": uint32(4096)}))
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	step, err := NewNode(seq, "test", Step{Command: Ptr("make test")})
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	edge, err := NewEdge(seq, EdgeCalls, job.ID(), step.ID(), WithEdgeMetadata(metadata.Map{"weight": 2}))
	if err != nil {
		t.Fatalf("NewEdge failed: %v", err)
	}
	g, err := New(seq, "app", WithGraphMetadata(metadata.Map{"scan_number": 7}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g.AddNode(job)
	g.AddNode(step)
	g.AddEdge(edge)

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(&decoded, g) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", &decoded, g)
	}
	got, _ := decoded.GetNode(job.ID())
	if v := got.Attributes().(Job).Parameters["retries"]; v != 3.0 {
		t.Errorf("retries = %v (%T), want 3.0", v, v)
	}
}

func TestNode_AbsentOptionalsEncodeAsNull(t *testing.T) {
	n, err := NewNode(newSeq(), "p", Pipeline{})
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	data, _ := json.Marshal(n)
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"platform", "path", "branch", "trigger_type", "agent"} {
		v, ok := payload[key]
		if !ok || v != nil {
			t.Errorf("%s = %v (present %v), want null", key, v, ok)
		}
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	p, _ := As[Pipeline](&back)
	if p.Path != nil || back.Platform != nil {
		t.Error("null optionals should decode to nil")
	}
}

func TestDecodeNode_UnknownTag(t *testing.T) {
	_, err := DecodeNode("deployment", map[string]any{"id": "x", "name": "x"})
	if !errors.Is(err, ErrUnknownNodeType) {
		t.Fatalf("err = %v, want ErrUnknownNodeType", err)
	}
	if !IsUnknownNodeType(err) {
		t.Error("IsUnknownNodeType should hold")
	}

	var n Node
	err = json.Unmarshal([]byte(`{"id":"x","name":"x","node_type":"base"}`), &n)
	if !errors.Is(err, ErrUnknownNodeType) {
		t.Errorf("UnmarshalJSON err = %v, want ErrUnknownNodeType", err)
	}
}

func TestDecodeNode_TagMismatch(t *testing.T) {
	payload := map[string]any{"id": "s1", "name": "checkout", "node_type": "job"}
	_, err := DecodeNode(NodeStep, payload)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want ErrTypeMismatch", err)
	}
	if payload["node_type"] != "job" {
		t.Error("DecodeNode must not modify the caller's payload")
	}
}

func TestDecodeNode_TagFilledWhenAbsent(t *testing.T) {
	payload := map[string]any{"id": "s1", "name": "checkout", "command": "git clone"}
	n, err := DecodeNode(NodeStep, payload)
	if err != nil {
		t.Fatalf("DecodeNode failed: %v", err)
	}
	step, ok := As[Step](n)
	if !ok || step.Command == nil || *step.Command != "git clone" {
		t.Errorf("step = %+v, want command git clone", step)
	}
	if _, present := payload["node_type"]; present {
		t.Error("DecodeNode must not add keys to the caller's payload")
	}
	if n.Source != confidence.SourceStatic || n.Confidence != confidence.LevelMedium {
		t.Errorf("omitted provenance should default to static/medium, got %s/%s", n.Source, n.Confidence)
	}
}

func TestDecodeNode_MissingIDIsNotRegenerated(t *testing.T) {
	_, err := DecodeNode(NodeStep, map[string]any{"name": "checkout"})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestDecodeNodeJSON(t *testing.T) {
	n, err := DecodeNodeJSON(NodeJob, []byte(`{"id":"j1","name":"test","timeout_minutes":15,"parameters":{"retries":3}}`))
	if err != nil {
		t.Fatalf("DecodeNodeJSON failed: %v", err)
	}
	job, _ := As[Job](n)
	if job.TimeoutMinutes == nil || *job.TimeoutMinutes != 15 {
		t.Errorf("TimeoutMinutes = %v, want 15", job.TimeoutMinutes)
	}
	if job.Conditions == nil {
		t.Error("absent conditions should default to an empty list")
	}
	if _, err := DecodeNodeJSON(NodeJob, []byte(`not json`)); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestRegistryCoversEveryNodeType(t *testing.T) {
	got := Registry()
	if !reflect.DeepEqual(got, AllNodeTypes()) {
		t.Errorf("Registry() = %v, want %v", got, AllNodeTypes())
	}
	for _, attrs := range sampleAttributes() {
		if !attrs.NodeType().Valid() {
			t.Errorf("%s should be valid", attrs.NodeType())
		}
	}
	if NodeType("pipeline_node").Valid() {
		t.Error("unknown tag should be invalid")
	}
}

// A secret reference must have no place to put a secret value: only the key
// name and scope are representable.
func TestSecretRef_SchemaHoldsNoValue(t *testing.T) {
	typ := reflect.TypeOf(SecretRef{})
	var fields []string
	for i := 0; i < typ.NumField(); i++ {
		fields = append(fields, strings.Split(typ.Field(i).Tag.Get("json"), ",")[0])
	}
	if !reflect.DeepEqual(fields, []string{"key", "scope"}) {
		t.Errorf("SecretRef fields = %v, want [key scope]", fields)
	}

	n, err := NewNode(newSeq(), "token", SecretRef{Key: "API_TOKEN"})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(n)
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	base := map[string]bool{"id": true, "node_type": true, "name": true, "platform": true,
		"metadata": true, "source": true, "confidence": true, "key": true, "scope": true}
	for k := range payload {
		if !base[k] {
			t.Errorf("unexpected field %q in encoded secret_ref", k)
		}
	}

	// A value smuggled into the payload is dropped on decode.
	decoded, err := DecodeNode(NodeSecretRef, map[string]any{"id": "s", "name": "s", "key": "K", "value": "hunter2"})
	if err != nil {
		t.Fatal(err)
	}
	out, _ := json.Marshal(decoded)
	if strings.Contains(string(out), "hunter2") {
		t.Error("secret value survived decoding")
	}
}

func TestNode_CloneDoesNotAlias(t *testing.T) {
	orig, err := NewNode(newSeq(), "j", Job{Parameters: metadata.Map{"nested": map[string]any{"a": 1.0}}},
		WithMetadata(metadata.Map{"k": []any{"v"}}))
	if err != nil {
		t.Fatal(err)
	}
	clone := orig.Clone()
	clone.Metadata["k"].([]any)[0] = "changed"
	if orig.Metadata["k"].([]any)[0] != "v" {
		t.Error("clone metadata aliases the original")
	}

	// Attributes are handed out as copies.
	job, _ := As[Job](orig)
	job.Parameters["nested"].(map[string]any)["a"] = 2.0
	again, _ := As[Job](orig)
	if again.Parameters["nested"].(map[string]any)["a"] != 1.0 {
		t.Error("As exposes the node's parameter map")
	}
}

func TestNewNode_CopiesCallerAttributes(t *testing.T) {
	labels := []string{"linux"}
	n, err := NewNode(newSeq(), "r", Runner{Labels: labels})
	if err != nil {
		t.Fatal(err)
	}
	labels[0] = "windows"
	r, _ := As[Runner](n)
	if r.Labels[0] != "linux" {
		t.Error("node shares the caller's label slice")
	}
}
