package engine

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/ti4engine/internal/abilities"
)

// paramsDecisionSource implements abilities.DecisionSource over an
// intent's Params: callers that already know which ability a player
// wants to play during a window supply it as Params["decisions"]; every
// other eligible player is treated as declining (spec §5 suspension
// points describe the general case of blocking for that decision, which
// this engine resolves eagerly via the triggering intent's own payload
// rather than issuing a second round-trip per optional ability).
type paramsDecisionSource struct {
	decisions map[bson.ObjectID]abilities.Decision
}

func (d paramsDecisionSource) Decide(player bson.ObjectID, eligible []abilities.Descriptor) abilities.Decision {
	if dec, ok := d.decisions[player]; ok {
		return dec
	}
	return abilities.Decision{Play: false}
}

// decisionSourceFromParams reads an optional map[bson.ObjectID]abilities.Decision
// out of an intent's Params, defaulting to an empty (decline-all) source.
func decisionSourceFromParams(params map[string]any) abilities.DecisionSource {
	m, _ := params["decisions"].(map[bson.ObjectID]abilities.Decision)
	return paramsDecisionSource{decisions: m}
}
