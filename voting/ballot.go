// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"encoding/json"

	"github.com/danielhkuo/ballotbox/models"
)

// wireBallot keeps every field raw so a malformed field is reported by the
// validation step that owns it rather than as a decoding failure.
type wireBallot struct {
	PresidentID    json.RawMessage `json:"president_id"`
	MemberIDs      json.RawMessage `json:"member_ids"`
	EthicsAccepted json.RawMessage `json:"ethics_accepted"`
}

// DecodeBallot extracts a ballot from a request body. A president_id that
// is not a string decodes as empty, member_ids that is not an array of
// strings decodes as absent, and an ethics_accepted that is not a boolean
// decodes as unanswered.
func DecodeBallot(body []byte) (models.Ballot, error) {
	var w wireBallot
	if err := json.Unmarshal(body, &w); err != nil {
		return models.Ballot{}, err
	}

	var b models.Ballot
	if len(w.PresidentID) > 0 {
		var id string
		if json.Unmarshal(w.PresidentID, &id) == nil {
			b.PresidentID = id
		}
	}
	if len(w.MemberIDs) > 0 {
		var ids []string
		if json.Unmarshal(w.MemberIDs, &ids) == nil && ids != nil {
			b.MemberIDs = ids
		}
	}
	if len(w.EthicsAccepted) > 0 {
		var accepted *bool
		if json.Unmarshal(w.EthicsAccepted, &accepted) == nil {
			b.EthicsAccepted = accepted
		}
	}
	return b, nil
}

// EffectiveMembers returns the president followed by the member choices,
// without duplicates, in first-seen order.
func EffectiveMembers(presidentID string, memberIDs []string) []string {
	seen := make(map[string]struct{}, len(memberIDs)+1)
	out := make([]string, 0, len(memberIDs)+1)
	for _, id := range append([]string{presidentID}, memberIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
