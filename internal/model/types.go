package model

import "errors"

// ErrInvalidInput is returned when a top-level argument is nil.
// Callers should treat it as a programming-contract violation.
var ErrInvalidInput = errors.New("invalid input: nil argument")

// QueryType is the leading DML keyword of a statement.
type QueryType string

const (
	QueryTypeSelect  QueryType = "SELECT"
	QueryTypeInsert  QueryType = "INSERT"
	QueryTypeUpdate  QueryType = "UPDATE"
	QueryTypeDelete  QueryType = "DELETE"
	QueryTypeMerge   QueryType = "MERGE"
	QueryTypeReplace QueryType = "REPLACE"
)

// JoinType classifies a join clause found in a statement.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// ComplexityMetrics summarizes the structural weight of a statement.
type ComplexityMetrics struct {
	TableCount     int  `json:"table_count"`
	HasSubquery    bool `json:"has_subquery"`
	HasAggregation bool `json:"has_aggregation"`
	HasGroupBy     bool `json:"has_group_by"`
	HasOrderBy     bool `json:"has_order_by"`
}

// QueryFeatures is the structural feature record extracted from one
// SQL statement text. Two statements differing only by literal values
// share the same Normalized text and therefore the same Signature.
type QueryFeatures struct {
	QueryType     QueryType         `json:"query_type,omitempty"`
	Tables        []string          `json:"tables"`
	JoinCount     int               `json:"join_count"`
	JoinTypes     []JoinType        `json:"join_types"`
	Complexity    ComplexityMetrics `json:"complexity"`
	BindVariables []string          `json:"bind_variables"`
	Normalized    string            `json:"normalized"`
	Signature     string            `json:"signature"`
	Functions     []string          `json:"functions"`
}

// StatRecord is one statement-statistic sample from an activity feed.
// SQLText is a pointer so an absent field can be told apart from an
// empty statement; absent numeric counters unmarshal to zero.
type StatRecord struct {
	SQLID         string  `json:"sql_id"`
	SQLText       *string `json:"sql_text,omitempty"`
	Executions    int64   `json:"executions"`
	ElapsedTimeMs float64 `json:"elapsed_time_ms"`
	CPUTimeMs     float64 `json:"cpu_time_ms"`
	DiskReads     int64   `json:"disk_reads"`
	BufferGets    int64   `json:"buffer_gets"`
	RowsProcessed int64   `json:"rows_processed"`
}

// AggregatedGroup rolls up every record sharing a structural signature.
type AggregatedGroup struct {
	Signature          string            `json:"signature"`
	RepresentativeSQL  string            `json:"representative_sql"`
	QueryType          QueryType         `json:"query_type,omitempty"`
	Complexity         ComplexityMetrics `json:"complexity"`
	SQLIDs             []string          `json:"sql_ids"`
	QueryCount         int               `json:"query_count"`
	TotalExecutions    int64             `json:"total_executions"`
	TotalElapsedTimeMs float64           `json:"total_elapsed_time_ms"`
	TotalCPUTimeMs     float64           `json:"total_cpu_time_ms"`
	TotalDiskReads     int64             `json:"total_disk_reads"`
	TotalBufferGets    int64             `json:"total_buffer_gets"`
	TotalRowsProcessed int64             `json:"total_rows_processed"`
	AvgElapsedTimeMs   float64           `json:"avg_elapsed_time_ms"`
	AvgCPUTimeMs       float64           `json:"avg_cpu_time_ms"`
}

// CompressionResult is the output of one workload compression pass.
type CompressionResult struct {
	Groups           []AggregatedGroup `json:"groups"`
	TotalQueries     int64             `json:"total_queries"`
	TotalExecutions  int64             `json:"total_executions"`
	UniquePatterns   int               `json:"unique_patterns"`
	CompressionRatio float64           `json:"compression_ratio"`
}

// RiskLevel defines the severity of an audit finding.
type RiskLevel string

const (
	RiskLevelFatal      RiskLevel = "FATAL"
	RiskLevelWarning    RiskLevel = "WARNING"
	RiskLevelSuggestion RiskLevel = "SUGGESTION"
)

// Finding is a potential problem detected in a hot query pattern.
type Finding struct {
	Type            string    `json:"type"`
	Level           RiskLevel `json:"level"`
	Message         string    `json:"message"`
	Suggestion      string    `json:"suggestion"`
	Signature       string    `json:"signature"`
	SQL             string    `json:"sql"`
	TotalExecutions int64     `json:"total_executions"`
}
