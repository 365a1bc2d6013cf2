package homework

// Verdict codes returned by the review API.
const (
	VerdictApproved  = "approved"
	VerdictReviewing = "reviewing"
	VerdictRejected  = "rejected"
)

var verdicts = map[string]string{
	VerdictApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	VerdictReviewing: "Работа взята на проверку ревьюером.",
	VerdictRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// VerdictText returns the human sentence for a verdict code.
func VerdictText(code string) (string, bool) {
	text, ok := verdicts[code]
	return text, ok
}
