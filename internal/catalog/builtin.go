package catalog

import "github.com/solatis/prospector/internal/types"

// builtin is one hard-coded field of an entity type.
type builtin struct {
	name  string
	label string
	typ   types.FieldType
}

// DefaultLeadStages are the lead status options used when no pipeline
// stages are configured.
var DefaultLeadStages = []string{"new", "contacted", "qualified", "proposal", "negotiation", "won", "lost"}

// DefaultCompanyStatuses are the company status options.
var DefaultCompanyStatuses = []string{"prospect", "active", "customer", "churned"}

var leadBuiltins = []builtin{
	{"name", "Name", types.FieldText},
	{"email", "Email", types.FieldText},
	{"phone", "Phone", types.FieldText},
	{"title", "Title", types.FieldText},
	{"companyName", "Company", types.FieldText},
	{"status", "Status", types.FieldSelect},
	{"source", "Source", types.FieldText},
	{"dealValue", "Deal Value", types.FieldNumber},
	{"tags", "Tags", types.FieldText},
	{"linkedinUrl", "LinkedIn URL", types.FieldText},
	{"archived", "Archived", types.FieldBoolean},
	{"lastContactedAt", "Last Contacted", types.FieldDate},
	{"createdAt", "Created", types.FieldDate},
	{"updatedAt", "Updated", types.FieldDate},
}

var companyBuiltins = []builtin{
	{"name", "Name", types.FieldText},
	{"website", "Website", types.FieldText},
	{"industry", "Industry", types.FieldText},
	{"description", "Description", types.FieldText},
	{"rating", "Rating", types.FieldNumber},
	{"status", "Status", types.FieldSelect},
	{"createdAt", "Created", types.FieldDate},
	{"updatedAt", "Updated", types.FieldDate},
}

var apolloBuiltins = []builtin{
	{"apolloEnrichment.employeeCount", "Employee Count", types.FieldNumber},
	{"apolloEnrichment.annualRevenue", "Annual Revenue", types.FieldNumber},
	{"apolloEnrichment.foundedYear", "Founded Year", types.FieldNumber},
	{"apolloEnrichment.industry", "Apollo Industry", types.FieldText},
	{"apolloEnrichment.city", "City", types.FieldText},
	{"apolloEnrichment.country", "Country", types.FieldText},
	{"apolloEnrichment.technologies", "Technologies", types.FieldText},
}

var blogBuiltins = []builtin{
	{"blogAnalysis.hasBlog", "Has Blog", types.FieldBoolean},
	{"blogAnalysis.postCount", "Blog Post Count", types.FieldNumber},
	{"blogAnalysis.monthlyFrequency", "Posts per Month", types.FieldNumber},
	{"blogAnalysis.lastPostDate", "Last Blog Post", types.FieldDate},
	{"blogAnalysis.contentTopics", "Blog Topics", types.FieldText},
}

var writingBuiltins = []builtin{
	{"writingProgram.hasProgram", "Has Writing Program", types.FieldBoolean},
	{"writingProgram.acceptsSubmissions", "Accepts Submissions", types.FieldBoolean},
	{"writingProgram.paymentAmount", "Payment Amount", types.FieldNumber},
	{"writingProgram.programUrl", "Program URL", types.FieldText},
	{"writingProgram.status", "Program Status", types.FieldText},
}

// builtinNames is the set of plain names a custom field must not shadow.
func builtinNames(entity types.EntityType) map[string]struct{} {
	list := leadBuiltins
	if entity == types.EntityCompanies {
		list = companyBuiltins
	}
	out := make(map[string]struct{}, len(list))
	for _, b := range list {
		out[b.name] = struct{}{}
	}
	return out
}
