package postgres

type OutcomeRecord = outcomeRecord

var (
	NewOutcomeRecord = newOutcomeRecord //nolint:gochecknoglobals // test export
	DecodeOutcome    = decodeOutcome    //nolint:gochecknoglobals // test export
)
