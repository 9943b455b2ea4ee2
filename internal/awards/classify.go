package awards

import (
	"strings"
	"time"

	"github.com/spendwatch/awardfeed/internal/tabular"
)

// Classify labels a single record. First match wins: an IDV flag with a
// contract-instrument id is an IDV, an AWARD flag with one is a contract,
// anything else is a grant.
func Classify(row tabular.Row) AwardType {
	flag := strings.ToUpper(strings.TrimSpace(row[ColAwardOrIDVFlag]))
	hasPIID := strings.TrimSpace(row[ColPIID]) != ""
	switch {
	case flag == "IDV" && hasPIID:
		return TypeContractIDV
	case flag == "AWARD" && hasPIID:
		return TypeContract
	default:
		return TypeGrant
	}
}

// IsLive reports whether the record's type-relevant end date is strictly
// after now. A missing or unparseable date fails the comparison, so the
// record is excluded.
func IsLive(row tabular.Row, awardType AwardType, now time.Time) bool {
	end, ok := ParseEndDate(row[awardType.RelevantEndDateColumn()])
	if !ok {
		return false
	}
	return end.After(now)
}

// MatchesKeywords reports whether the record's description contains at
// least one keyword, case-insensitive. Keywords are plain substrings; no
// pattern-language semantics apply. An empty keyword list matches nothing
// and callers should skip the filter entirely in that case.
func MatchesKeywords(row tabular.Row, keywords []string) bool {
	desc := strings.ToLower(row[ColDescription])
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// ClassifyAndFilter derives award_type for every record, keeps only live
// records, re-applies the keyword filter when keywords are supplied, then
// derives piid_or_fain and drops the raw id columns. now is the evaluation
// timestamp captured at run start.
func ClassifyAndFilter(t tabular.Table, keywords []string, now time.Time) tabular.Table {
	out := t.WithColumn(ColAwardType, func(r tabular.Row) string {
		return string(Classify(r))
	})

	out = out.Filter(func(r tabular.Row) bool {
		return IsLive(r, AwardType(r[ColAwardType]), now)
	})

	if hasNonEmptyKeyword(keywords) {
		out = out.Filter(func(r tabular.Row) bool {
			return MatchesKeywords(r, keywords)
		})
	}

	out = out.WithColumn(ColPIIDOrFAIN, func(r tabular.Row) string {
		return strings.TrimSpace(r[ColPIID]) + strings.TrimSpace(r[ColFAIN])
	})
	return out.Drop(ColPIID, ColFAIN)
}

func hasNonEmptyKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
