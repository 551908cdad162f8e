package analyzer

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"sql-compact/internal/lexer"
	"sql-compact/internal/model"

	"go.uber.org/zap"
)

// Patterns for the regex-driven structural scans. Word boundaries keep
// identifiers that merely contain "join" from matching.
var (
	joinWordRe  = regexp.MustCompile(`(?i)\bJOIN\b`)
	joinTableRe = regexp.MustCompile(`(?i)(?:INNER|LEFT|RIGHT|FULL|CROSS)?\s*JOIN\s+(\w+)`)
	subqueryRe  = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	bindVarRe   = regexp.MustCompile(`:(\w+)`)

	stringLitRe  = regexp.MustCompile(`'[^']*'`)
	numberLitRe  = regexp.MustCompile(`\b\d+\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// joinTypeRes are tested in order; a bare JOIN counts as INNER only
// when none of these matched.
var joinTypeRes = []struct {
	joinType model.JoinType
	re       *regexp.Regexp
}{
	{model.JoinInner, regexp.MustCompile(`(?i)\bINNER\s+JOIN\b`)},
	{model.JoinLeft, regexp.MustCompile(`(?i)\bLEFT\s+(?:OUTER\s+)?JOIN\b`)},
	{model.JoinRight, regexp.MustCompile(`(?i)\bRIGHT\s+(?:OUTER\s+)?JOIN\b`)},
	{model.JoinFull, regexp.MustCompile(`(?i)\bFULL\s+(?:OUTER\s+)?JOIN\b`)},
	{model.JoinCross, regexp.MustCompile(`(?i)\bCROSS\s+JOIN\b`)},
}

// aggregateMarkers are substring probes against the uppercased text.
var aggregateMarkers = []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX(", "STDDEV(", "VARIANCE("}

// dmlKeywords decide the query type; the first one found in token
// order wins.
var dmlKeywords = map[string]model.QueryType{
	"SELECT":  model.QueryTypeSelect,
	"INSERT":  model.QueryTypeInsert,
	"UPDATE":  model.QueryTypeUpdate,
	"DELETE":  model.QueryTypeDelete,
	"MERGE":   model.QueryTypeMerge,
	"REPLACE": model.QueryTypeReplace,
}

// Analyzer turns raw SQL statement text into QueryFeatures. It is
// stateless across calls and safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Extract derives structural features from one SQL statement text.
// A nil pointer violates the call contract and returns
// model.ErrInvalidInput. Empty, whitespace-only, or untokenizable text
// degrades to the canonical empty record; extraction never fails for
// malformed SQL.
func (a *Analyzer) Extract(sql *string) (*model.QueryFeatures, error) {
	if sql == nil {
		return nil, model.ErrInvalidInput
	}
	text := *sql
	if strings.TrimSpace(text) == "" {
		return emptyFeatures(), nil
	}

	tokens, err := lexer.Tokenize(text)
	if err != nil {
		a.logger.Debug("tokenization failed, returning empty features", zap.Error(err))
		return emptyFeatures(), nil
	}

	f := emptyFeatures()
	f.QueryType = queryType(tokens)
	f.Tables = extractTables(text, tokens)
	f.JoinCount = len(joinWordRe.FindAllStringIndex(text, -1))
	f.JoinTypes = joinTypes(text, f.JoinCount)
	f.Complexity = complexity(text, len(f.Tables))
	f.BindVariables = bindVariables(text)
	f.Normalized = Normalize(text)
	f.Functions = functionCalls(tokens)
	if f.Normalized != "" {
		sum := md5.Sum([]byte(f.Normalized))
		f.Signature = hex.EncodeToString(sum[:])
	}

	a.logger.Debug("extracted query features",
		zap.String("signature", f.Signature),
		zap.String("query_type", string(f.QueryType)),
		zap.Int("tables", len(f.Tables)),
		zap.Int("join_count", f.JoinCount))

	return f, nil
}

// Normalize strips literal values from a statement: single-quoted
// strings and standalone digit runs become ?, whitespace collapses to
// single spaces.
func Normalize(text string) string {
	out := stringLitRe.ReplaceAllString(text, "?")
	out = numberLitRe.ReplaceAllString(out, "?")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func emptyFeatures() *model.QueryFeatures {
	return &model.QueryFeatures{
		Tables:        []string{},
		JoinTypes:     []model.JoinType{},
		BindVariables: []string{},
		Functions:     []string{},
	}
}

// queryType returns the first DML keyword in pre-order token order.
func queryType(tokens []lexer.Token) model.QueryType {
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.Keyword:
			if qt, ok := dmlKeywords[strings.ToUpper(tok.Text)]; ok {
				return qt
			}
		case lexer.Group, lexer.Function:
			if qt := queryType(tok.Children); qt != "" {
				return qt
			}
		}
	}
	return ""
}

// extractTables unions the top-level FROM walk with the textual JOIN
// scan, deduplicated and sorted for deterministic output.
func extractTables(text string, tokens []lexer.Token) []string {
	seen := make(map[string]struct{})
	for _, name := range fromClauseTables(tokens) {
		seen[name] = struct{}{}
	}
	for _, m := range joinTableRe.FindAllStringSubmatch(text, -1) {
		seen[strings.ToLower(m[1])] = struct{}{}
	}

	tables := make([]string, 0, len(seen))
	for name := range seen {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	return tables
}

// fromClauseTables walks the first top-level FROM clause, collecting
// base table names until the next keyword. Aliases and unresolvable
// entries (subqueries, expressions) are dropped.
func fromClauseTables(tokens []lexer.Token) []string {
	var tables []string
	inFrom := false
	expectName := false
	for _, tok := range tokens {
		if tok.Kind == lexer.Keyword {
			if inFrom {
				break
			}
			if strings.EqualFold(tok.Text, "FROM") {
				inFrom = true
				expectName = true
			}
			continue
		}
		if !inFrom {
			continue
		}
		switch tok.Kind {
		case lexer.Ident:
			if expectName {
				if name := baseName(tok.Text); name != "" {
					tables = append(tables, strings.ToLower(name))
				}
				expectName = false
			}
			// Otherwise an alias; drop it.
		case lexer.Punct:
			if tok.Text == "," {
				expectName = true
			} else if tok.Text == ";" {
				return tables
			}
		default:
			// Subquery, function, or literal occupies the table slot.
			expectName = false
		}
	}
	return tables
}

// baseName resolves a possibly schema-qualified identifier to its
// trailing segment: "s.orders" -> "orders".
func baseName(ident string) string {
	ident = strings.Trim(ident, ".")
	if ident == "" {
		return ""
	}
	if i := strings.LastIndex(ident, "."); i >= 0 {
		ident = ident[i+1:]
	}
	return ident
}

func joinTypes(text string, joinCount int) []model.JoinType {
	types := []model.JoinType{}
	for _, jt := range joinTypeRes {
		if jt.re.MatchString(text) {
			types = append(types, jt.joinType)
		}
	}
	// A bare JOIN with no qualifier reads as INNER, but only when no
	// qualified join matched at all.
	if len(types) == 0 && joinCount > 0 {
		types = append(types, model.JoinInner)
	}
	return types
}

func complexity(text string, tableCount int) model.ComplexityMetrics {
	upper := strings.ToUpper(text)
	m := model.ComplexityMetrics{
		TableCount:  tableCount,
		HasSubquery: subqueryRe.MatchString(text),
		HasGroupBy:  strings.Contains(upper, "GROUP BY"),
		HasOrderBy:  strings.Contains(upper, "ORDER BY"),
	}
	for _, marker := range aggregateMarkers {
		if strings.Contains(upper, marker) {
			m.HasAggregation = true
			break
		}
	}
	return m
}

func bindVariables(text string) []string {
	binds := []string{}
	for _, m := range bindVarRe.FindAllStringSubmatch(text, -1) {
		binds = append(binds, ":"+m[1])
	}
	return binds
}

// functionCalls collects callee names in pre-order discovery order,
// duplicates preserved.
func functionCalls(tokens []lexer.Token) []string {
	names := []string{}
	walkFunctions(tokens, &names)
	return names
}

func walkFunctions(tokens []lexer.Token, names *[]string) {
	for _, tok := range tokens {
		if tok.Kind == lexer.Function {
			*names = append(*names, tok.Text)
		}
		if len(tok.Children) > 0 {
			walkFunctions(tok.Children, names)
		}
	}
}
