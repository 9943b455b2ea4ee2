// Package awards holds the domain model for federal award records: the
// fixed award-type groupings submitted to the export API, the column names
// the classifier depends on, and the classification and filtering rules
// applied to downloaded tables.
package awards

import "time"

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// AwardType is the derived category assigned to every record.
type AwardType string

// Supported award types.
const (
	TypeContract    AwardType = "contract"
	TypeContractIDV AwardType = "contract_idv"
	TypeGrant       AwardType = "grant"
)

// Column names the pipeline reads or derives. Input names match the
// USAspending bulk-download CSV schema.
const (
	ColAwardOrIDVFlag = "award_or_idv_flag"
	ColPIID           = "award_id_piid"
	ColFAIN           = "award_id_fain"
	ColPotentialEnd   = "period_of_performance_potential_end_date"
	ColCurrentEnd     = "period_of_performance_current_end_date"
	ColOrderingEnd    = "ordering_period_end_date"
	ColDescription    = "prime_award_base_transaction_description"

	// Derived columns.
	ColAwardType   = "award_type"
	ColPIIDOrFAIN  = "piid_or_fain"
	ColRetrievedAt = "record_retrieved_at"
)

// Group maps an award type to the API award_type_codes it covers.
type Group struct {
	Type  AwardType
	Codes []string
}

// Groups returns the fixed award-type groupings, in fetch order. The code
// lists mirror the USAspending taxonomy and are deliberately not
// user-configurable.
func Groups() []Group {
	return []Group{
		{Type: TypeContract, Codes: []string{"A", "B", "C", "D"}},
		{Type: TypeContractIDV, Codes: []string{
			"IDV_A", "IDV_B", "IDV_B_A", "IDV_B_B", "IDV_B_C", "IDV_C", "IDV_D", "IDV_E",
		}},
		{Type: TypeGrant, Codes: []string{"02", "03", "04", "05"}},
	}
}

// RelevantEndDateColumn returns the end-date column the liveness filter
// compares for the given award type.
func (a AwardType) RelevantEndDateColumn() string {
	switch a {
	case TypeContract:
		return ColPotentialEnd
	case TypeContractIDV:
		return ColOrderingEnd
	default:
		return ColCurrentEnd
	}
}
