package awards

// outputColumns is the allowlist applied to concatenated group results
// before classification. The raw id columns stay on the list because the
// classifier consumes them; it drops them after deriving piid_or_fain.
var outputColumns = []string{
	ColPIID,
	ColFAIN,
	"award_id_uri",
	ColAwardOrIDVFlag,
	"contract_award_unique_key",
	"assistance_award_unique_key",
	"total_obligated_amount",
	"total_outlayed_amount",
	"current_total_value_of_award",
	"potential_total_value_of_award",
	"total_funding_amount",
	"award_base_action_date",
	"award_latest_action_date",
	"period_of_performance_start_date",
	ColCurrentEnd,
	ColPotentialEnd,
	ColOrderingEnd,
	"awarding_agency_code",
	"awarding_agency_name",
	"awarding_sub_agency_name",
	"awarding_office_name",
	"funding_agency_name",
	"funding_sub_agency_name",
	"funding_office_name",
	"recipient_name",
	"recipient_uei",
	"recipient_state_name",
	"recipient_city_name",
	"primary_place_of_performance_state_name",
	"primary_place_of_performance_city_name",
	"naics_code",
	"naics_description",
	"cfda_number",
	ColDescription,
	"usaspending_permalink",
	ColRetrievedAt,
}

// OutputColumns returns a copy of the output column allowlist.
func OutputColumns() []string {
	return append([]string(nil), outputColumns...)
}

// RequestFields returns the column names requested from the export API:
// the output allowlist minus the run-local derived column.
func RequestFields() []string {
	fields := make([]string, 0, len(outputColumns))
	for _, c := range outputColumns {
		if c == ColRetrievedAt {
			continue
		}
		fields = append(fields, c)
	}
	return fields
}
