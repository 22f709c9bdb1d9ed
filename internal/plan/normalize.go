package plan

import (
	"encoding/json"
)

// Field synonyms the oracle commonly substitutes for the canonical names.
// Normalization runs before structural validation so a plan is not
// rejected over a spelling the model prefers.
var planFieldSynonyms = map[string]string{
	"plan_name":    "name",
	"title":        "name",
	"summary":      "description",
	"requirements": "dependencies",
	"libraries":    "dependencies",
	"port":         "service_port",
}

var stepFieldSynonyms = map[string]string{
	"step_number": "index",
	"number":      "index",
	"step":        "index",
	"action":      "kind",
	"action_kind": "kind",
	"type":        "kind",
	"step_name":   "name",
	"deps":        "depends_on",
	"dependson":   "depends_on",
	"requires":    "depends_on",
}

// normalizePlanJSON rewrites synonym field names in a raw plan object to
// their canonical forms. Canonical fields already present win over
// synonyms; the rewrite never drops data the canonical form would keep.
func normalizePlanJSON(payload []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	renameFields(raw, planFieldSynonyms)

	if stepsRaw, ok := raw["steps"]; ok {
		var steps []map[string]json.RawMessage
		if err := json.Unmarshal(stepsRaw, &steps); err == nil {
			for _, step := range steps {
				renameFields(step, stepFieldSynonyms)
			}
			if rewritten, err := json.Marshal(steps); err == nil {
				raw["steps"] = rewritten
			}
		}
	}

	return json.Marshal(raw)
}

func renameFields(obj map[string]json.RawMessage, synonyms map[string]string) {
	for synonym, canonical := range synonyms {
		value, ok := obj[synonym]
		if !ok {
			continue
		}
		if _, exists := obj[canonical]; !exists {
			obj[canonical] = value
		}
		delete(obj, synonym)
	}
}
