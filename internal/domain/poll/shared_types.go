// internal/domain/poll/shared_types.go
package poll

// Phase names the step of the cycle state machine.
type Phase string

const (
	PhaseFetching   Phase = "FETCHING"
	PhaseValidating Phase = "VALIDATING"
	PhaseFormatting Phase = "FORMATTING"
	PhaseDeciding   Phase = "DECIDING"
	PhaseNotifying  Phase = "NOTIFYING"
)

// Outcome describes how a cycle ended.
type Outcome string

const (
	OutcomeNotified        Outcome = "NOTIFIED"         // new status sent, cursor advanced
	OutcomeUnchanged       Outcome = "UNCHANGED"        // same report as before, cursor advanced
	OutcomeNothingNew      Outcome = "NOTHING_NEW"      // empty submissions list, cursor advanced
	OutcomeSendFailed      Outcome = "SEND_FAILED"      // send rejected, retried next cycle
	OutcomeErrorReported   Outcome = "ERROR_REPORTED"   // diagnostic sent to the chat
	OutcomeErrorSuppressed Outcome = "ERROR_SUPPRESSED" // same diagnostic already reported
)

// Advanced reports whether a cycle with this outcome moves the cursor.
func (o Outcome) Advanced() bool {
	switch o {
	case OutcomeNotified, OutcomeUnchanged, OutcomeNothingNew:
		return true
	default:
		return false
	}
}
