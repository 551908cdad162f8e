package model

import (
	"time"

	"github.com/pingcap/tidb/parser/ast"
)

// Cache stores computed artifacts by string key with an optional TTL.
// Values are opaque to the cache; a zero TTL means no expiry.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Exists(key string) bool
}

// Rule represents a single audit logic unit run against the
// representative statement of an aggregated group.
type Rule interface {
	// Name returns the unique identifier of the rule
	Name() string
	// Check examines the group's representative statement and returns
	// any findings. It receives the group and its parsed AST.
	Check(group *AggregatedGroup, node ast.StmtNode) ([]Finding, error)
}

// Reporter defines how to output a compression result
type Reporter interface {
	Report(result *CompressionResult, findings []Finding) error
}
