package forensics

// Scope says which scoring pass can fire a rule.
type Scope int

const (
	ScopeDocument Scope = iota
	ScopeBatch
)

func (s Scope) String() string {
	if s == ScopeBatch {
		return "batch"
	}
	return "document"
}

// Rule is one row of the weight table. Predicates live next to the pass that
// evaluates them; the table itself is the single source for normalization.
type Rule struct {
	Name   string
	Weight int
	Scope  Scope
	// Statistical batch rules can be switched off as a group.
	Statistical bool
}

var (
	RuleDifferentAuthor       = Rule{Name: "different_author", Weight: 15, Scope: ScopeDocument}
	RuleModifiedBeforeCreated = Rule{Name: "modified_before_created", Weight: 25, Scope: ScopeDocument}
	RuleMissingMetadata       = Rule{Name: "missing_metadata", Weight: 15, Scope: ScopeDocument}
	RuleLongRunOutlier        = Rule{Name: "long_run_outlier", Weight: 25, Scope: ScopeDocument}
	RuleWritingSpeed          = Rule{Name: "writing_speed", Weight: 20, Scope: ScopeDocument}
	RuleRevisionDensity       = Rule{Name: "rsid_density", Weight: 20, Scope: ScopeDocument}

	RuleAuthorCollusion        = Rule{Name: "author_collusion", Weight: 30, Scope: ScopeBatch}
	RuleModifierCollusion      = Rule{Name: "modifier_collusion", Weight: 30, Scope: ScopeBatch}
	RuleAuthorAsModifier       = Rule{Name: "author_as_modifier", Weight: 25, Scope: ScopeBatch}
	RuleModifierAsAuthor       = Rule{Name: "modifier_as_author", Weight: 25, Scope: ScopeBatch}
	RuleSharedRevisions        = Rule{Name: "shared_revisions", Weight: 30, Scope: ScopeBatch}
	RuleRevisionDensityOutlier = Rule{Name: "revision_density_outlier", Weight: 20, Scope: ScopeBatch, Statistical: true}
	RuleCharsPerRunOutlier     = Rule{Name: "chars_per_run_outlier", Weight: 15, Scope: ScopeBatch, Statistical: true}
)

// Registry is an ordered rule table.
type Registry []Rule

var registry = Registry{
	RuleDifferentAuthor,
	RuleModifiedBeforeCreated,
	RuleMissingMetadata,
	RuleLongRunOutlier,
	RuleWritingSpeed,
	RuleRevisionDensity,
	RuleAuthorCollusion,
	RuleModifierCollusion,
	RuleAuthorAsModifier,
	RuleModifierAsAuthor,
	RuleSharedRevisions,
	RuleRevisionDensityOutlier,
	RuleCharsPerRunOutlier,
}

// AllRules returns a copy of the full table.
func AllRules() Registry {
	return append(Registry(nil), registry...)
}

// DocumentRules is the rule set of a per-document scoring pass.
func DocumentRules() Registry {
	return registry.Filter(func(r Rule) bool { return r.Scope == ScopeDocument })
}

// BatchRules is the rule set of a batch-augmented pass: every document rule plus
// the cross-document rules, with statistical ones only when enabled.
func BatchRules(statistical bool) Registry {
	return registry.Filter(func(r Rule) bool { return !r.Statistical || statistical })
}

func (r Registry) Filter(keep func(Rule) bool) Registry {
	out := make(Registry, 0, len(r))
	for _, rule := range r {
		if keep(rule) {
			out = append(out, rule)
		}
	}
	return out
}

// MaxScore is the normalization denominator for this rule set.
func (r Registry) MaxScore() int {
	total := 0
	for _, rule := range r {
		total += rule.Weight
	}
	return total
}

func (r Registry) Lookup(name string) (Rule, bool) {
	for _, rule := range r {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}
