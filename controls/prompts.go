package controls

import "fmt"

const judgeSystemPrompt = "You are an expert in mapping internal controls to regulatory requirements. " +
	"Answer precisely and only in the requested format."

// buildJudgePrompt asks the model whether a retrieved regulation passage is
// addressed by the control activity. The verdict must come back inside
// <json>...</json> tags so it can be extracted mechanically.
func buildJudgePrompt(controlActivity, matchedText string) string {
	return fmt.Sprintf(`Control Activity : %s

Regulation passage:
%s

Assess whether the control activity addresses the obligation described in the regulation passage.
Respond with a JSON object wrapped in <json></json> tags, with exactly these keys:
  "mapping": one of "Full", "Partial" or "None"
  "rationale": a one or two sentence justification

Example:
<json>{"mapping": "Partial", "rationale": "The control covers periodic review but not incident-driven review."}</json>`,
		controlActivity, matchedText)
}
