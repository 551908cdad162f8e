package analyzer

import (
	"errors"
	"reflect"
	"regexp"
	"testing"

	"sql-compact/internal/model"
)

func extract(t *testing.T, sql string) *model.QueryFeatures {
	t.Helper()
	a := NewAnalyzer(nil)
	f, err := a.Extract(&sql)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return f
}

func TestExtract_NilInput(t *testing.T) {
	a := NewAnalyzer(nil)
	if _, err := a.Extract(nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("Extract(nil) error = %v, want ErrInvalidInput", err)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	for _, sql := range []string{"", "   ", "\n\t "} {
		f := extract(t, sql)
		if f.QueryType != "" || len(f.Tables) != 0 || f.JoinCount != 0 ||
			len(f.JoinTypes) != 0 || len(f.BindVariables) != 0 ||
			f.Normalized != "" || f.Signature != "" || len(f.Functions) != 0 {
			t.Errorf("Extract(%q) = %+v, want canonical empty record", sql, f)
		}
		if f.Complexity != (model.ComplexityMetrics{}) {
			t.Errorf("Extract(%q) complexity = %+v, want zero", sql, f.Complexity)
		}
	}
}

func TestExtract_SimpleSelect(t *testing.T) {
	f := extract(t, "SELECT * FROM users WHERE age > 25")

	if f.QueryType != model.QueryTypeSelect {
		t.Errorf("QueryType = %q, want SELECT", f.QueryType)
	}
	if !reflect.DeepEqual(f.Tables, []string{"users"}) {
		t.Errorf("Tables = %v, want [users]", f.Tables)
	}
	if f.JoinCount != 0 {
		t.Errorf("JoinCount = %d, want 0", f.JoinCount)
	}
}

func TestExtract_JoinTopology(t *testing.T) {
	sql := `SELECT u.name, o.total
		FROM users u
		INNER JOIN orders o ON u.id = o.user_id
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE u.age > :min_age AND o.created_at > :start_date`
	f := extract(t, sql)

	wantTables := []string{"order_items", "orders", "products", "users"}
	if !reflect.DeepEqual(f.Tables, wantTables) {
		t.Errorf("Tables = %v, want %v", f.Tables, wantTables)
	}
	if f.JoinCount != 3 {
		t.Errorf("JoinCount = %d, want 3", f.JoinCount)
	}
	if !reflect.DeepEqual(f.JoinTypes, []model.JoinType{model.JoinInner, model.JoinLeft}) {
		t.Errorf("JoinTypes = %v, want [INNER LEFT]", f.JoinTypes)
	}
	if !reflect.DeepEqual(f.BindVariables, []string{":min_age", ":start_date"}) {
		t.Errorf("BindVariables = %v, want [:min_age :start_date]", f.BindVariables)
	}
	if f.Complexity.TableCount != 4 {
		t.Errorf("TableCount = %d, want 4", f.Complexity.TableCount)
	}
}

func TestExtract_JoinTypePolicy(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []model.JoinType
	}{
		{
			name: "bare join reads as inner",
			sql:  "SELECT * FROM a JOIN b ON a.id = b.id",
			want: []model.JoinType{model.JoinInner},
		},
		{
			name: "bare join next to qualified join is not counted separately",
			sql:  "SELECT * FROM a LEFT JOIN b ON a.id = b.id JOIN c ON b.id = c.id",
			want: []model.JoinType{model.JoinLeft},
		},
		{
			name: "outer keyword is optional",
			sql:  "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id RIGHT OUTER JOIN c ON b.id = c.id",
			want: []model.JoinType{model.JoinLeft, model.JoinRight},
		},
		{
			name: "cross and full",
			sql:  "SELECT * FROM a CROSS JOIN b FULL JOIN c ON b.id = c.id",
			want: []model.JoinType{model.JoinFull, model.JoinCross},
		},
		{
			name: "no join",
			sql:  "SELECT * FROM a",
			want: []model.JoinType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := extract(t, tt.sql)
			if !reflect.DeepEqual(f.JoinTypes, tt.want) {
				t.Errorf("JoinTypes = %v, want %v", f.JoinTypes, tt.want)
			}
		})
	}
}

func TestExtract_QueryTypes(t *testing.T) {
	tests := []struct {
		sql  string
		want model.QueryType
	}{
		{"select 1 from dual", model.QueryTypeSelect},
		{"INSERT INTO t (a) VALUES (1)", model.QueryTypeInsert},
		{"update t set a = 1 where id = 2", model.QueryTypeUpdate},
		{"DELETE FROM t WHERE id = 1", model.QueryTypeDelete},
		{"MERGE INTO t USING s ON (t.id = s.id)", model.QueryTypeMerge},
		{"COMMIT", ""},
		{"(SELECT a FROM t) UNION (SELECT a FROM u)", model.QueryTypeSelect},
	}

	for _, tt := range tests {
		f := extract(t, tt.sql)
		if f.QueryType != tt.want {
			t.Errorf("Extract(%q).QueryType = %q, want %q", tt.sql, f.QueryType, tt.want)
		}
	}
}

func TestExtract_Complexity(t *testing.T) {
	sql := `SELECT department, COUNT(*), AVG(salary) AS avg_salary
		FROM employees
		GROUP BY department
		HAVING COUNT(*) > 5
		ORDER BY avg_salary DESC`
	f := extract(t, sql)

	if !f.Complexity.HasAggregation {
		t.Error("HasAggregation = false, want true")
	}
	if !f.Complexity.HasGroupBy {
		t.Error("HasGroupBy = false, want true")
	}
	if !f.Complexity.HasOrderBy {
		t.Error("HasOrderBy = false, want true")
	}
	if f.Complexity.HasSubquery {
		t.Error("HasSubquery = true, want false")
	}

	found := false
	for _, fn := range f.Functions {
		if fn == "COUNT" {
			found = true
		}
	}
	if !found {
		t.Errorf("Functions = %v, want COUNT present", f.Functions)
	}
}

func TestExtract_Subquery(t *testing.T) {
	f := extract(t, "SELECT * FROM orders WHERE user_id IN (SELECT id FROM users)")
	if !f.Complexity.HasSubquery {
		t.Error("HasSubquery = false, want true")
	}
	// Subquery tables are not captured by the top-level FROM walk.
	if !reflect.DeepEqual(f.Tables, []string{"orders"}) {
		t.Errorf("Tables = %v, want [orders]", f.Tables)
	}
}

func TestExtract_FunctionsDiscoveryOrder(t *testing.T) {
	f := extract(t, "SELECT NVL(SUM(amount), 0), COUNT(*), NVL(tax, 0) FROM invoices")
	want := []string{"NVL", "SUM", "COUNT", "NVL"}
	if !reflect.DeepEqual(f.Functions, want) {
		t.Errorf("Functions = %v, want %v", f.Functions, want)
	}
}

func TestExtract_AliasResolution(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{"alias dropped", "SELECT * FROM orders o", []string{"orders"}},
		{"as alias dropped", "SELECT * FROM orders AS o", []string{"orders"}},
		{"comma list", "SELECT * FROM orders o, customers c WHERE o.cid = c.id", []string{"customers", "orders"}},
		{"schema qualifier stripped", "SELECT * FROM app.orders o", []string{"orders"}},
		{"update has no from tables", "UPDATE orders SET total = 0", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := extract(t, tt.sql)
			if !reflect.DeepEqual(f.Tables, tt.want) {
				t.Errorf("Tables = %v, want %v", f.Tables, tt.want)
			}
		})
	}
}

func TestExtract_Normalization(t *testing.T) {
	f := extract(t, "SELECT  *   FROM users\n WHERE name = 'Bob'  AND age > 25")
	want := "SELECT * FROM users WHERE name = ? AND age > ?"
	if f.Normalized != want {
		t.Errorf("Normalized = %q, want %q", f.Normalized, want)
	}
}

func TestExtract_NormalizedHasNoLiterals(t *testing.T) {
	quoted := regexp.MustCompile(`'[^']*'`)
	digits := regexp.MustCompile(`\b\d+\b`)

	sqls := []string{
		"SELECT * FROM t WHERE a = 'x' AND b = 'longer literal with 123'",
		"INSERT INTO t VALUES (1, 2, 'three')",
		"SELECT 42 FROM dual",
	}
	for _, sql := range sqls {
		f := extract(t, sql)
		if quoted.MatchString(f.Normalized) {
			t.Errorf("Normalized %q still contains a quoted literal", f.Normalized)
		}
		if digits.MatchString(f.Normalized) {
			t.Errorf("Normalized %q still contains a digit run", f.Normalized)
		}
	}
}

func TestExtract_SignatureStability(t *testing.T) {
	a := NewAnalyzer(nil)

	sql1 := "SELECT * FROM products WHERE price < 100"
	sql2 := "SELECT * FROM products WHERE price < 9999"
	sql3 := "SELECT * FROM products WHERE name = 'widget'"
	sql4 := "SELECT * FROM products WHERE name = 'gadget'"

	f1, _ := a.Extract(&sql1)
	f2, _ := a.Extract(&sql2)
	f3, _ := a.Extract(&sql3)
	f4, _ := a.Extract(&sql4)

	if f1.Signature != f2.Signature {
		t.Error("numeric literals should not change the signature")
	}
	if f3.Signature != f4.Signature {
		t.Error("string literals should not change the signature")
	}
	if f1.Signature == f3.Signature {
		t.Error("structurally different statements share a signature")
	}
	if len(f1.Signature) != 32 {
		t.Errorf("Signature length = %d, want 32 hex chars", len(f1.Signature))
	}
}

func TestExtract_Deterministic(t *testing.T) {
	sql := `SELECT u.name, COUNT(*) FROM users u
		LEFT JOIN orders o ON u.id = o.user_id
		WHERE u.created > :since GROUP BY u.name ORDER BY 2 DESC`
	a := NewAnalyzer(nil)

	first, err := a.Extract(&sql)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := a.Extract(&sql)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("Extract() not deterministic: %+v vs %+v", first, next)
		}
	}
}

func TestExtract_BindDuplicatesPreserved(t *testing.T) {
	f := extract(t, "SELECT * FROM t WHERE a = :v OR b = :v OR c = :other")
	want := []string{":v", ":v", ":other"}
	if !reflect.DeepEqual(f.BindVariables, want) {
		t.Errorf("BindVariables = %v, want %v", f.BindVariables, want)
	}
}

func TestExtract_MalformedDegradesToEmpty(t *testing.T) {
	// Pathological nesting trips the tokenizer; the contract demands a
	// silent empty record rather than an error.
	deep := ""
	for i := 0; i < 300; i++ {
		deep += "("
	}
	sql := "SELECT " + deep
	f := extract(t, sql)
	if f.Signature != "" || f.QueryType != "" || len(f.Tables) != 0 {
		t.Errorf("malformed input should degrade to empty record, got %+v", f)
	}
}
