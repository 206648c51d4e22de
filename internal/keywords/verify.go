package keywords

import (
	"sort"
	"strings"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// VerificationResult holds bullets whose keyword claims were checked against their own text
type VerificationResult struct {
	VerifiedBullets       map[string][]types.GeneratedBullet
	ActualKeywordsUsed    []string
	ActualKeywordsNotUsed []string
}

// VerifyKeywordsInBullets recomputes each bullet's keywordsUsed as the keywords the generator
// claimed that are also in allKeywords and actually present in that bullet's text.
//
// ActualKeywordsUsed collects every keyword from allKeywords found in any bullet, and
// ActualKeywordsNotUsed is the rest of allKeywords. Both keep the order of allKeywords.
// The input map is not modified.
func VerifyKeywordsInBullets(bulletsByRole map[string][]types.GeneratedBullet, allKeywords []string, mode types.MatchMode) VerificationResult {
	canonical := make(map[string]string, len(allKeywords))
	for _, kw := range allKeywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" {
			continue
		}
		if _, exists := canonical[key]; !exists {
			canonical[key] = kw
		}
	}

	roles := make([]string, 0, len(bulletsByRole))
	for role := range bulletsByRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	found := make(map[string]bool)
	verified := make(map[string][]types.GeneratedBullet, len(bulletsByRole))

	for _, role := range roles {
		bullets := bulletsByRole[role]
		out := make([]types.GeneratedBullet, 0, len(bullets))
		for _, bullet := range bullets {
			for key, kw := range canonical {
				if !found[key] && IsKeywordInText(bullet.Text, kw, mode) {
					found[key] = true
				}
			}

			confirmed := make([]string, 0, len(bullet.KeywordsUsed))
			seen := make(map[string]bool)
			for _, claimed := range bullet.KeywordsUsed {
				key := strings.ToLower(strings.TrimSpace(claimed))
				kw, known := canonical[key]
				if !known || seen[key] {
					continue
				}
				if IsKeywordInText(bullet.Text, kw, mode) {
					confirmed = append(confirmed, kw)
					seen[key] = true
				}
			}

			verifiedBullet := bullet
			verifiedBullet.KeywordsUsed = confirmed
			out = append(out, verifiedBullet)
		}
		verified[role] = out
	}

	result := VerificationResult{
		VerifiedBullets:       verified,
		ActualKeywordsUsed:    []string{},
		ActualKeywordsNotUsed: []string{},
	}
	emitted := make(map[string]bool)
	for _, kw := range allKeywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || emitted[key] {
			continue
		}
		emitted[key] = true
		if found[key] {
			result.ActualKeywordsUsed = append(result.ActualKeywordsUsed, canonical[key])
		} else {
			result.ActualKeywordsNotUsed = append(result.ActualKeywordsNotUsed, canonical[key])
		}
	}

	return result
}
