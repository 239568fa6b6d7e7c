// internal/rules/aggregate.go
package rules

import (
	"github.com/samber/lo"

	"github.com/solatis/prospector/internal/types"
)

/*
 * Cross-entity aggregation.
 *
 * Rules whose entity source names a related collection are evaluated
 * against that collection instead of the record itself:
 *   - lead by company: look up the lead's company, evaluate the rule there
 *   - company by leads: evaluate the rule on each of the company's leads and
 *     reduce with any / all / none / count
 *
 * Index holds the two lookup maps. It is built once per filtering pass so
 * every lookup is O(1); building it per rule or per record would make a pass
 * quadratic in the number of records.
 *
 * Vacuous cases: all and none are true for a company without leads; any is
 * false; count sees 0 and is compared normally.
 */

// Index maps ids to companies and company ids to their leads.
type Index struct {
	companies      map[string]*types.Company
	leadsByCompany map[string][]*types.Lead
}

// NewIndex builds the lookup maps for one filtering pass. Nil records and
// leads without a company id are left out.
func NewIndex(leads []*types.Lead, companies []*types.Company) *Index {
	companies = lo.Filter(companies, func(c *types.Company, _ int) bool {
		return c != nil && c.ID != ""
	})
	linked := lo.Filter(leads, func(l *types.Lead, _ int) bool {
		return l != nil && l.CompanyID != ""
	})
	return &Index{
		companies: lo.KeyBy(companies, func(c *types.Company) string { return c.ID }),
		leadsByCompany: lo.GroupBy(linked, func(l *types.Lead) string {
			return l.CompanyID
		}),
	}
}

// Company returns the company with the given id.
func (idx *Index) Company(id string) (*types.Company, bool) {
	if idx == nil || id == "" {
		return nil, false
	}
	c, ok := idx.companies[id]
	return c, ok
}

// LeadsOf returns the leads belonging to a company, in input order.
func (idx *Index) LeadsOf(companyID string) []*types.Lead {
	if idx == nil || companyID == "" {
		return nil
	}
	return idx.leadsByCompany[companyID]
}

// EvaluateLeadByCompany evaluates a company-sourced rule for a lead.
// A lead without a company id, or whose company is unknown, never matches.
func EvaluateLeadByCompany(lead *types.Lead, rule CompiledRule, idx *Index) bool {
	if lead == nil || lead.CompanyID == "" {
		return false
	}
	company, ok := idx.Company(lead.CompanyID)
	if !ok {
		return false
	}
	return EvaluateRule(company, rule)
}

// EvaluateCompanyByLeads evaluates a leads-sourced rule for a company by
// reducing the per-lead results with the rule's aggregation.
func EvaluateCompanyByLeads(company *types.Company, rule CompiledRule, idx *Index) bool {
	if company == nil {
		return false
	}
	leads := idx.LeadsOf(company.ID)

	switch rule.Aggregation {
	case types.AggregateAny, "":
		return lo.SomeBy(leads, func(l *types.Lead) bool { return EvaluateRule(l, rule) })
	case types.AggregateAll:
		return lo.EveryBy(leads, func(l *types.Lead) bool { return EvaluateRule(l, rule) })
	case types.AggregateNone:
		return lo.NoneBy(leads, func(l *types.Lead) bool { return EvaluateRule(l, rule) })
	case types.AggregateCount:
		n := lo.CountBy(leads, func(l *types.Lead) bool { return EvaluateRule(l, rule) })
		return CompareCount(n, rule.Count)
	default:
		return false
	}
}

// CompareCount tests a matching-lead count against a count condition.
// Unknown operators and malformed thresholds never match.
func CompareCount(n int, cond CountCondition) bool {
	count := float64(n)
	switch cond.Operator {
	case types.OpBetween:
		r, ok := cond.Operand.(RangeOperand)
		if !ok {
			return false
		}
		low, okLow := ToNumber(r.Start)
		high, okHigh := ToNumber(r.End)
		return okLow && okHigh && count >= low && count <= high
	case types.OpEquals, types.OpGreaterThan, types.OpLessThan,
		types.OpGreaterThanEqual, types.OpLessThanEqual:
		s, ok := cond.Operand.(ScalarOperand)
		if !ok {
			return false
		}
		threshold, ok := ToNumber(s.Value)
		if !ok {
			return false
		}
		switch cond.Operator {
		case types.OpEquals:
			return count == threshold
		case types.OpGreaterThan:
			return count > threshold
		case types.OpLessThan:
			return count < threshold
		case types.OpGreaterThanEqual:
			return count >= threshold
		default:
			return count <= threshold
		}
	default:
		return false
	}
}
