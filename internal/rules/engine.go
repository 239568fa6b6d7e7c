package rules

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/solatis/prospector/internal/types"
)

// Engine runs filtering passes over in-memory record sets.
// Holds no record state between passes; safe for concurrent use.
type Engine struct {
	log *zap.SugaredLogger
}

// NewEngine creates a filter engine. A nil logger disables pass logging.
func NewEngine(log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{log: log}
}

// FilterLeads returns the leads matching the rule chain, in input order.
// companies supplies the targets of company-sourced rules.
func (e *Engine) FilterLeads(leads []*types.Lead, companies []*types.Company, chain []types.FilterRule) []*types.Lead {
	leads = lo.Filter(leads, func(l *types.Lead, _ int) bool { return l != nil })
	if len(chain) == 0 {
		return leads
	}

	compiled := CompileChain(chain)
	var idx *Index
	if lo.SomeBy(compiled, func(r CompiledRule) bool { return r.Source == types.SourceCompany }) {
		idx = NewIndex(nil, companies)
	}

	out := lo.Filter(leads, func(l *types.Lead, _ int) bool {
		return MatchLead(l, compiled, idx)
	})
	e.log.Debugw("filtered leads", "rules", len(chain), "in", len(leads), "out", len(out))
	return out
}

// FilterCompanies returns the companies matching the rule chain, in input
// order. leads supplies the collections for leads-sourced rules.
func (e *Engine) FilterCompanies(companies []*types.Company, leads []*types.Lead, chain []types.FilterRule) []*types.Company {
	companies = lo.Filter(companies, func(c *types.Company, _ int) bool { return c != nil })
	if len(chain) == 0 {
		return companies
	}

	compiled := CompileChain(chain)
	var idx *Index
	if lo.SomeBy(compiled, func(r CompiledRule) bool { return r.Source == types.SourceLeads }) {
		idx = NewIndex(leads, nil)
	}

	out := lo.Filter(companies, func(c *types.Company, _ int) bool {
		return MatchCompany(c, compiled, idx)
	})
	e.log.Debugw("filtered companies", "rules", len(chain), "in", len(companies), "out", len(out))
	return out
}

// Explanation reports each rule's own result for one record, next to the
// folded outcome. Used by the CLI to show why a record did or did not match.
type Explanation struct {
	RecordID string       `json:"recordId"`
	Results  []RuleResult `json:"results"`
	Matched  bool         `json:"matched"`
}

// RuleResult is one rule's result within an Explanation.
type RuleResult struct {
	RuleID  string             `json:"ruleId"`
	Field   string             `json:"field"`
	Source  types.EntitySource `json:"entitySource"`
	Matched bool               `json:"matched"`
}

// ExplainLead evaluates a chain for one lead and records per-rule results.
func (e *Engine) ExplainLead(lead *types.Lead, companies []*types.Company, chain []types.FilterRule) Explanation {
	compiled := CompileChain(chain)
	idx := NewIndex(nil, companies)
	exp := Explanation{RecordID: lead.RecordID(), Matched: MatchLead(lead, compiled, idx)}
	for _, r := range compiled {
		var ok bool
		switch r.Source {
		case types.SourceCompany:
			ok = EvaluateLeadByCompany(lead, r, idx)
		case types.SourceSelf:
			ok = EvaluateRule(lead, r)
		}
		exp.Results = append(exp.Results, RuleResult{RuleID: r.ID, Field: r.Field, Source: r.Source, Matched: ok})
	}
	return exp
}

// ExplainCompany evaluates a chain for one company and records per-rule results.
func (e *Engine) ExplainCompany(company *types.Company, leads []*types.Lead, chain []types.FilterRule) Explanation {
	compiled := CompileChain(chain)
	idx := NewIndex(leads, nil)
	exp := Explanation{RecordID: company.RecordID(), Matched: MatchCompany(company, compiled, idx)}
	for _, r := range compiled {
		var ok bool
		switch r.Source {
		case types.SourceLeads:
			ok = EvaluateCompanyByLeads(company, r, idx)
		case types.SourceSelf:
			ok = EvaluateRule(company, r)
		}
		exp.Results = append(exp.Results, RuleResult{RuleID: r.ID, Field: r.Field, Source: r.Source, Matched: ok})
	}
	return exp
}
