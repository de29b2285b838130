package validator

// ResolvePolicies derives the rule for every header column, in header order.
//
// Fixed overrides win over the user's selection:
//   - User.UserId is always an integer; required only when the profile
//     demands the identifier.
//   - ChannelType is always text. When the profile makes it row-required it
//     must also be one of ChannelTypes; otherwise it is optional free text.
//
// Any other column listed as row-required by the profile keeps the user's
// type but is forced to required. Columns absent from cfg default to
// optional text.
func ResolvePolicies(header []string, profile Profile, cfg ColumnConfig) []ColumnPolicy {
	policies := make([]ColumnPolicy, len(header))
	for i, name := range header {
		p := ColumnPolicy{Name: name, Index: i, Kind: KindText}

		switch {
		case name == ColumnUserID:
			p.Kind = KindInteger
			p.Required = profile.RequireUserID
			p.Fixed = FixedIdentifier

		case name == ColumnChannelType:
			p.Kind = KindText
			p.Fixed = FixedChannelType
			if profile.rowRequired(name) {
				p.Required = true
				p.Allowed = ChannelTypes
			}

		default:
			if sel, ok := cfg[name]; ok {
				p.Kind = sel.Type
				p.Required = sel.Required
			}
			if profile.rowRequired(name) {
				p.Required = true
			}
		}

		policies[i] = p
	}
	return policies
}
