package intake

const (
	FieldCompanyName     = "companyName"
	FieldContactName     = "contactName"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldWebsiteGoal     = "websiteGoal"
	FieldTargetAudience  = "targetAudience"
	FieldTimeline        = "timeline"
	FieldBudget          = "budget"
	FieldExistingWebsite = "existingWebsite"
	FieldCompetitors     = "competitors"
	FieldAdditionalInfo  = "additionalInfo"
)

// FieldNames is the fixed key set of the form, in display order.
var FieldNames = []string{
	FieldCompanyName,
	FieldContactName,
	FieldEmail,
	FieldPhone,
	FieldWebsiteGoal,
	FieldTargetAudience,
	FieldTimeline,
	FieldBudget,
	FieldExistingWebsite,
	FieldCompetitors,
	FieldAdditionalInfo,
}

// RequiredFields are enforced by callers before Submit, never by Fields.
var RequiredFields = []string{
	FieldCompanyName,
	FieldContactName,
	FieldEmail,
	FieldWebsiteGoal,
}

// FeatureCatalog is ordered; Features() always reports selections in this order.
var FeatureCatalog = []string{
	"E-commerce",
	"Blog",
	"Contact Form",
	"Newsletter Signup",
	"Photo Gallery",
	"Video Content",
	"Social Media Integration",
	"Search Functionality",
	"User Accounts/Login",
	"Booking System",
	"Live Chat",
	"Multi-language Support",
}

var TimelineOptions = []string{"asap", "1-2-months", "3-6-months", "flexible"}

var BudgetOptions = []string{"500", "1k-2k", "25k-45k", "5k-plus", "not-sure"}

var (
	validFields   = toSet(FieldNames)
	validFeatures = toSet(FeatureCatalog)
)

func IsField(name string) bool {
	_, ok := validFields[name]
	return ok
}

func IsFeature(feature string) bool {
	_, ok := validFeatures[feature]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
