package entitlement

// ModelID identifies an abstract model tier exposed to clients.
type ModelID string

const (
	ModelFastSmall ModelID = "fast-small"
	ModelBalanced  ModelID = "balanced"
	ModelPremium   ModelID = "premium"
)

func (m ModelID) String() string {
	return string(m)
}

// modelPolicy is the single source of truth for which model tiers each
// plan may use. The allowed sets are ordered tier-ascending so clients can
// render them directly; server-side checks and client rendering must never
// diverge, which is why this table is not duplicated anywhere else.
var modelPolicy = map[Plan]struct {
	allowed      []ModelID
	defaultModel ModelID
}{
	PlanWeekly:   {allowed: []ModelID{ModelFastSmall}, defaultModel: ModelFastSmall},
	PlanMonthly:  {allowed: []ModelID{ModelFastSmall, ModelBalanced}, defaultModel: ModelBalanced},
	PlanSemester: {allowed: []ModelID{ModelFastSmall, ModelBalanced, ModelPremium}, defaultModel: ModelPremium},
}

// AllowedModels returns the ordered set of model tiers the plan may use.
// The returned slice is a copy.
func AllowedModels(plan Plan) []ModelID {
	entry, ok := modelPolicy[plan]
	if !ok {
		return nil
	}
	models := make([]ModelID, len(entry.allowed))
	copy(models, entry.allowed)
	return models
}

// AllowedModelNames returns the allowed set as plain strings for wire
// responses and error payloads.
func AllowedModelNames(plan Plan) []string {
	entry, ok := modelPolicy[plan]
	if !ok {
		return nil
	}
	names := make([]string, len(entry.allowed))
	for i, m := range entry.allowed {
		names[i] = string(m)
	}
	return names
}

// DefaultModel returns the model tier used when a key has no preference.
func DefaultModel(plan Plan) ModelID {
	return modelPolicy[plan].defaultModel
}

// IsModelAllowed reports whether the plan may use the given model tier.
func IsModelAllowed(plan Plan, model ModelID) bool {
	entry, ok := modelPolicy[plan]
	if !ok {
		return false
	}
	for _, m := range entry.allowed {
		if m == model {
			return true
		}
	}
	return false
}
