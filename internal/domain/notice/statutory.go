package notice

// ValidationResult is the outcome of statutory validation. Validation never
// blocks ticket creation: receipt must be acknowledged regardless, so an
// incomplete notice is flagged for remediation instead of rejected.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// ValidateStatutoryElements checks the required legal elements for the given
// framework. The DMCA requires nine: three claimant identity fields, the
// work title, the infringement description, three boolean attestations and
// an electronic signature. A false attestation counts as missing.
//
// Non-DMCA frameworks share the identity/description core but do not demand
// the US-specific attestations.
func ValidateStatutoryElements(e StatutoryElements, framework LegalFramework) ValidationResult {
	var missing []string

	if e.ClaimantName == "" {
		missing = append(missing, "claimant_name")
	}
	if e.ClaimantAddress == "" {
		missing = append(missing, "claimant_address")
	}
	if e.ClaimantEmail == "" {
		missing = append(missing, "claimant_email")
	}
	if e.WorkTitle == "" {
		missing = append(missing, "work_title")
	}
	if e.InfringementDesc == "" {
		missing = append(missing, "infringement_description")
	}

	if framework == FrameworkDMCA512 {
		if !e.GoodFaithBelief {
			missing = append(missing, "good_faith_belief")
		}
		if !e.AccuracyStatement {
			missing = append(missing, "accuracy_statement")
		}
		if !e.PerjuryStatement {
			missing = append(missing, "perjury_statement")
		}
		if e.Signature == "" {
			missing = append(missing, "signature")
		}
	}

	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}

// DefaultFramework maps a jurisdiction to its governing notice framework.
// Unknown codes route to the WIPO catch-all, never an error.
func DefaultFramework(jurisdiction Jurisdiction) LegalFramework {
	switch jurisdiction {
	case JurisdictionUS:
		return FrameworkDMCA512
	case JurisdictionEU:
		return FrameworkDSAArt16
	case JurisdictionUK:
		return FrameworkCDPA1988
	case JurisdictionCA:
		return FrameworkCANotice
	case JurisdictionAU:
		return FrameworkAUCopyright
	default:
		return FrameworkWIPOGlobal
	}
}
