// Package judgment obtains an independent eligibility assessment from the
// AI reasoning service and normalizes its free-form verdict into an outcome
// tier.
//
// The reasoning service is an external collaborator: it receives a case
// summary (facts plus the published requirements) and replies with narrative
// text and a model identifier. This package owns only the client and the
// normalization; prompt construction, retrieval, and model invocation are
// the service's concern.
//
// Normalization never guesses. Narrative text whose opening verdict segment
// contains no recognized tier word, or conflicting tier words, yields no
// judgment at all, so reconciliation falls back to the rule outcome alone
// rather than acting on a misread verdict.
//
// Usage:
//
//	assessor, err := judgment.NewHTTPAssessor(judgment.Config{
//	    BaseURL: "https://reasoning.internal/v1",
//	    APIKey:  os.Getenv("MINERVA_JUDGMENT_API_KEY"),
//	}, logger)
//	if err != nil {
//	    return err
//	}
//
//	aj, err := assessor.Assess(ctx, caseID, facts, ruleSet)
//	if err != nil {
//	    // transport or service failure: proceed without a judgment
//	}
//	if aj == nil {
//	    // no usable verdict: reconcile on the rule outcome alone
//	}
package judgment
