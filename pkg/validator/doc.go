// Package validator provides small declarative validation rules.
//
// A Rule pairs a check with the ValidationError reported when the check fails.
// Apply runs rules in order and collects every failure into ValidationErrors:
//
//	err := validator.Apply(
//		validator.RequiredString("subject", p.Subject),
//		validator.ValidEmail("recipient", p.Recipient),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// errs.Map() -> {"recipient": ["must be a valid email address"]}
//	}
package validator
