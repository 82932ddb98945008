package verification

// recommendations maps violation kinds to remediation hints.
var recommendations = map[ViolationKind]string{
	AmountOutOfBounds:            "enter an amount between 0.001 and 100000 kg",
	SuspiciousPrecision:          "round the amount to at most 6 decimal places",
	InvalidYear:                  "use a reporting year between 2020 and next year",
	RapidSubmission:              "wait 10 minutes before submitting more claims",
	CumulativeExceeded:           "seek third-party verification for larger volumes",
	UnrealisticRatio:             "check the offset against the establishment footprint",
	TierInsufficient:             "upgrade to certified project",
	MissingPermanencePlan:        "add a permanence plan",
	MissingRegistryID:            "add a registry verification ID",
	MissingAdditionalityEvidence: "add additionality evidence",
	MissingPhotoEvidence:         "add photo evidence",
	DescriptionTooShort:          "describe the practice in more detail",
	FailsAdditionality:           "document why the practice is not common practice",
	GamingDetected:               "claim held for manual review",
	ExceedsCapacity:              "check the offset against the establishment area",
	MethodologyIncomplete:        "complete the methodology baseline fields",
	BaselineTooOptimistic:        "revise the amount to the methodology estimate",
	RegistryVerificationFailed:   "check the registry verification ID with the registry",
}

const recommendUpgrade = "upgrade to certified project"

// decide folds the violations into the final decision fields.
func decide(p Policy, c ClaimView, r *Result) {
	r.Approved = len(r.HighSeverity()) == 0

	kinds := make(map[ViolationKind]struct{}, len(r.Violations))
	for _, v := range r.Violations {
		kinds[v.Kind] = struct{}{}
		if v.Requirement != "" {
			r.Requirements = appendUnique(r.Requirements, v.Requirement)
		}
		if rec, ok := recommendations[v.Kind]; ok {
			r.Recommendations = appendUnique(r.Recommendations, rec)
		}
	}

	selfReportedLarge := c.Tier == TierSelfReported && c.Amount.GreaterThan(p.AuditSelfReportedAmount)
	if selfReportedLarge {
		r.Recommendations = appendUnique(r.Recommendations, recommendUpgrade)
	}

	r.AuditRequired = c.Amount.GreaterThan(p.AuditAmount) ||
		len(kinds) > p.AuditMaxViolationKinds ||
		selfReportedLarge ||
		r.Additionality.CommonPracticeRate > p.AuditAdoptionRate
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
