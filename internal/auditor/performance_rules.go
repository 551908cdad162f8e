package auditor

import (
	"strings"

	"sql-compact/internal/model"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/opcode"
	"github.com/pingcap/tidb/parser/test_driver"
)

// DeepPaginationRule detects LIMIT offset, count where offset is large
type DeepPaginationRule struct {
	Threshold int64
}

func (r *DeepPaginationRule) Name() string { return "deep_pagination" }

func (r *DeepPaginationRule) Check(group *model.AggregatedGroup, node ast.StmtNode) ([]model.Finding, error) {
	var findings []model.Finding
	limitThreshold := r.Threshold
	if limitThreshold == 0 {
		limitThreshold = 5000 // default
	}

	if stmt, ok := node.(*ast.SelectStmt); ok && stmt.Limit != nil && stmt.Limit.Offset != nil {
		if val, ok := stmt.Limit.Offset.(*test_driver.ValueExpr); ok {
			if intVal, ok := val.GetValue().(int64); ok && intVal > limitThreshold {
				findings = append(findings, newFinding(group, "DEEP_PAGINATION", model.RiskLevelWarning,
					"Deep pagination detected (High Offset)",
					"Use keyset pagination (WHERE id > last_id) instead of OFFSET."))
			}
		}
	}

	return findings, nil
}

// NegativeQueryRule detects !=, NOT IN, LIKE '%...'
type NegativeQueryRule struct{}

func (r *NegativeQueryRule) Name() string { return "negative_query" }

func (r *NegativeQueryRule) Check(group *model.AggregatedGroup, node ast.StmtNode) ([]model.Finding, error) {
	var findings []model.Finding

	// A visitor reaches expressions anywhere in the statement.
	v := &negativeVisitor{findings: &findings, group: group}
	node.Accept(v)

	return findings, nil
}

type negativeVisitor struct {
	findings *[]model.Finding
	group    *model.AggregatedGroup
}

func (v *negativeVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if pattern, ok := in.(*ast.PatternInExpr); ok && pattern.Not {
		*v.findings = append(*v.findings, newFinding(v.group, "NEGATIVE_QUERY", model.RiskLevelWarning,
			"Avoid using NOT IN",
			"Use NOT EXISTS or LEFT JOIN ... IS NULL which are often better optimized."))
	}

	if binOp, ok := in.(*ast.BinaryOperationExpr); ok && binOp.Op == opcode.NE {
		*v.findings = append(*v.findings, newFinding(v.group, "NEGATIVE_QUERY", model.RiskLevelWarning,
			"Avoid using != (Not Equal)",
			"Negative comparison often prevents index usage."))
	}

	if pattern, ok := in.(*ast.PatternLikeOrIlikeExpr); ok {
		if strVal, ok := pattern.Pattern.(*test_driver.ValueExpr); ok {
			if strings.HasPrefix(strVal.GetString(), "%") {
				*v.findings = append(*v.findings, newFinding(v.group, "LEADING_WILDCARD", model.RiskLevelWarning,
					"LIKE query with leading wildcard",
					"Leading wildcards confuse the optimizer and prevent index usage (Full Table Scan)."))
			}
		}
	}

	return in, false
}

func (v *negativeVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
