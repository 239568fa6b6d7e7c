// internal/rules/chain.go
package rules

import (
	"github.com/solatis/prospector/internal/types"
)

/*
 * Rule chain combination.
 *
 * A chain is an ordered list of rules; each rule's gate joins the result so
 * far with the next rule's result. There is no precedence and no grouping:
 * "A AND B OR C" is (A AND B) OR C, and "A OR B AND C" is (A OR B) AND C.
 * The rule builder shows rules as sequential chips with connectors, and
 * users read them left to right.
 *
 * Companies are evaluated in two groups: the company's own rules and the
 * leads-sourced rules. Each group is folded left to right on its own, and
 * the two group results are always ANDed, whatever gate sits between the
 * last rule of one group and the first rule of the other.
 *
 * An empty chain matches every record.
 */

// Fold combines per-rule results left to right. gates[i] joins the result so
// far with results[i+1]; extra gates are ignored and missing gates are AND.
func Fold(results []bool, gates []types.LogicGate) bool {
	if len(results) == 0 {
		return true
	}
	acc := results[0]
	for i := 1; i < len(results); i++ {
		gate := types.GateAnd
		if i-1 < len(gates) {
			gate = gates[i-1]
		}
		if gate == types.GateOr {
			acc = acc || results[i]
		} else {
			acc = acc && results[i]
		}
	}
	return acc
}

// foldRules evaluates each rule with eval and folds the results using the
// rules' own gates.
func foldRules(chain []CompiledRule, eval func(CompiledRule) bool) bool {
	if len(chain) == 0 {
		return true
	}
	results := make([]bool, len(chain))
	gates := make([]types.LogicGate, len(chain))
	for i, r := range chain {
		results[i] = eval(r)
		gates[i] = r.Gate
	}
	return Fold(results, gates)
}

// MatchLead evaluates a compiled chain for one lead. Self rules read the
// lead, company rules read the lead's company; leads-sourced rules have no
// meaning for a lead and never match.
func MatchLead(lead *types.Lead, chain []CompiledRule, idx *Index) bool {
	return foldRules(chain, func(r CompiledRule) bool {
		switch r.Source {
		case types.SourceSelf, "":
			return EvaluateRule(lead, r)
		case types.SourceCompany:
			return EvaluateLeadByCompany(lead, r, idx)
		default:
			return false
		}
	})
}

// MatchCompany evaluates a compiled chain for one company. The self group
// and the leads group are folded separately and then ANDed.
func MatchCompany(company *types.Company, chain []CompiledRule, idx *Index) bool {
	self, leads := SplitGroups(chain)

	selfResult := foldRules(self, func(r CompiledRule) bool {
		if r.Source == types.SourceCompany {
			// A company has no company of its own.
			return false
		}
		return EvaluateRule(company, r)
	})
	leadsResult := foldRules(leads, func(r CompiledRule) bool {
		return EvaluateCompanyByLeads(company, r, idx)
	})
	return selfResult && leadsResult
}

// SplitGroups partitions a company chain into its self group and its leads
// group, preserving relative order within each.
func SplitGroups(chain []CompiledRule) (self, leads []CompiledRule) {
	for _, r := range chain {
		if r.Source == types.SourceLeads {
			leads = append(leads, r)
		} else {
			self = append(self, r)
		}
	}
	return self, leads
}
