package parser

import (
	"fmt"
	"regexp"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// Oracle-style named binds are not part of the grammar the TiDB parser
// accepts; they get rewritten to ? placeholders before parsing.
var bindMarkerRe = regexp.MustCompile(`:\w+`)

// SQLParser wraps the TiDB parser
type SQLParser struct {
	p *parser.Parser
}

func NewSQLParser() *SQLParser {
	return &SQLParser{
		p: parser.New(),
	}
}

// Parse converts a SQL string into an AST. Named bind markers are
// substituted with positional placeholders first, so representative
// statements sampled from an Oracle activity feed still parse.
func (sp *SQLParser) Parse(sql string) (ast.StmtNode, error) {
	stmtNodes, _, err := sp.p.Parse(SubstituteBinds(sql), "", "")
	if err != nil {
		return nil, err
	}
	if len(stmtNodes) == 0 {
		return nil, fmt.Errorf("no valid SQL found")
	}
	// Statistics feeds carry one statement per record.
	return stmtNodes[0], nil
}

// SubstituteBinds replaces every :name marker with a ? placeholder.
func SubstituteBinds(sql string) string {
	return bindMarkerRe.ReplaceAllString(sql, "?")
}
