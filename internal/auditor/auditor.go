package auditor

import (
	"sql-compact/internal/model"
	"sql-compact/internal/parser"

	"go.uber.org/zap"
)

// Auditor runs lint rules against the representative statement of each
// aggregated group. Groups whose representative does not parse are
// skipped, mirroring the tolerant-degradation policy of extraction.
type Auditor struct {
	rules  []model.Rule
	parser *parser.SQLParser
	logger *zap.Logger
}

func NewAuditor(p *parser.SQLParser, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		rules:  make([]model.Rule, 0),
		parser: p,
		logger: logger,
	}
}

func (a *Auditor) Register(rule model.Rule) {
	a.rules = append(a.rules, rule)
}

func (a *Auditor) Audit(groups []model.AggregatedGroup) ([]model.Finding, error) {
	var allFindings []model.Finding

	for i := range groups {
		group := &groups[i]
		stmt, err := a.parser.Parse(group.RepresentativeSQL)
		if err != nil {
			a.logger.Debug("skipping unparseable representative",
				zap.String("signature", group.Signature), zap.Error(err))
			continue
		}

		for _, rule := range a.rules {
			findings, err := rule.Check(group, stmt)
			if err != nil {
				a.logger.Warn("rule failed",
					zap.String("rule", rule.Name()), zap.Error(err))
				continue
			}
			if len(findings) > 0 {
				allFindings = append(allFindings, findings...)
			}
		}
	}

	return allFindings, nil
}
