package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func GraphID(id string) Field {
	return String("graph_id", id)
}

func GraphName(name string) Field {
	return String("graph_name", name)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func NodeType(t string) Field {
	return String("node_type", t)
}

func PlanID(id string) Field {
	return String("plan_id", id)
}

func ProposalID(id string) Field {
	return String("proposal_id", id)
}

func Metric(name string) Field {
	return String("metric", name)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
