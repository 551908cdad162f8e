package auditor

import (
	"sql-compact/internal/model"

	"github.com/pingcap/tidb/parser/ast"
)

func newFinding(group *model.AggregatedGroup, typ string, level model.RiskLevel, msg, suggestion string) model.Finding {
	return model.Finding{
		Type:            typ,
		Level:           level,
		Message:         msg,
		Suggestion:      suggestion,
		Signature:       group.Signature,
		SQL:             group.RepresentativeSQL,
		TotalExecutions: group.TotalExecutions,
	}
}

// UnsafeDMLRule detects UPDATE/DELETE patterns without WHERE
type UnsafeDMLRule struct{}

func (r *UnsafeDMLRule) Name() string { return "unsafe_dml" }

func (r *UnsafeDMLRule) Check(group *model.AggregatedGroup, node ast.StmtNode) ([]model.Finding, error) {
	var findings []model.Finding

	switch stmt := node.(type) {
	case *ast.UpdateStmt:
		if stmt.Where == nil {
			findings = append(findings, newFinding(group, "UNSAFE_UPDATE", model.RiskLevelFatal,
				"UPDATE pattern executed without WHERE clause (Full Table Update)",
				"Add a WHERE clause to limit the scope of the update."))
		}
	case *ast.DeleteStmt:
		if stmt.Where == nil {
			findings = append(findings, newFinding(group, "UNSAFE_DELETE", model.RiskLevelFatal,
				"DELETE pattern executed without WHERE clause (Full Table Delete)",
				"Add a WHERE clause to limit the scope of the delete."))
		}
	}

	return findings, nil
}

// SelectStarRule detects SELECT * in hot patterns
type SelectStarRule struct{}

func (r *SelectStarRule) Name() string { return "select_star" }

func (r *SelectStarRule) Check(group *model.AggregatedGroup, node ast.StmtNode) ([]model.Finding, error) {
	var findings []model.Finding

	if stmt, ok := node.(*ast.SelectStmt); ok && stmt.Fields != nil {
		for _, field := range stmt.Fields.Fields {
			if field.WildCard != nil {
				findings = append(findings, newFinding(group, "SELECT_STAR", model.RiskLevelSuggestion,
					"Avoid using SELECT * in production",
					"List valid columns explicitly to reduce I/O and forward compatibility issues."))
			}
		}
	}

	return findings, nil
}
