package task

import (
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Step ids for the post-enrollment help graph.
const (
	StepHelpTopic    models.StepID = "HELP_TOPIC"
	StepHelpFollowup models.StepID = "HELP_FOLLOWUP"
)

// helpAnswers maps topic keywords to canned answers. Nothing here is
// irreversible, so the graph carries no confirmation gate and finishing it
// returns the session to idle rather than a completed submission.
var helpAnswers = []struct {
	keywords []string
	answer   string
}{
	{
		keywords: []string{"contribution", "contribute", "percent", "paycheck"},
		answer:   "You can change your contribution rate any time from the Contributions screen; changes take effect with the next pay period.",
	},
	{
		keywords: []string{"loan", "borrow", "repay"},
		answer:   "Plan loans are repaid through payroll deduction. You can review your loan balance and payoff details on the Loans screen.",
	},
	{
		keywords: []string{"invest", "fund", "allocation"},
		answer:   "Your investment election applies to future contributions. You can rebalance existing savings from the Investments screen.",
	},
	{
		keywords: []string{"withdraw", "hardship", "cash"},
		answer:   "Withdrawals before age 59½ generally carry taxes and penalties. The Withdrawals screen lists the options your plan allows.",
	},
	{
		keywords: []string{"vest", "vesting", "match", "employer"},
		answer:   "Employer matching contributions vest on your plan's schedule; your own contributions are always fully vested. See the Vesting screen for your dates.",
	},
}

const defaultHelpAnswer = "You can find that under your plan dashboard, or I can connect you with a representative during business hours."

// helpAnswerFor picks the canned answer whose keywords match the topic.
func helpAnswerFor(topic string) string {
	lowered := strings.ToLower(topic)
	for _, h := range helpAnswers {
		for _, kw := range h.keywords {
			if strings.Contains(lowered, kw) {
				return h.answer
			}
		}
	}
	return defaultHelpAnswer
}

func helpData(data models.CollectedData) *models.HelpData {
	d, ok := data.(*models.HelpData)
	if !ok {
		return &models.HelpData{}
	}
	return d
}

func helpGraph() *Graph {
	steps := map[models.StepID]Step{
		StepHelpTopic: {
			ID:            StepHelpTopic,
			Label:         "Help topic",
			RequiredInput: models.InputText,
			Validate: func(input string, _ models.CollectedData) error {
				if strings.TrimSpace(input) == "" {
					return models.ErrTextExpected
				}
				return nil
			},
			Apply: func(input string, data models.CollectedData) {
				d := helpData(data)
				d.Topic = strings.TrimSpace(input)
				d.WantsMore = nil
			},
			Prompt: func(data models.CollectedData, verr error) string {
				if verr != nil {
					return "I didn't catch that. What would you like help with?"
				}
				return "What would you like help with? For example: contributions, loans, investments, or withdrawals."
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				if helpData(data).Topic != "" {
					return StepHelpFollowup, Advance
				}
				return "", Stay
			},
		},
		StepHelpFollowup: {
			ID:            StepHelpFollowup,
			Label:         "Help follow-up",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				d := helpData(data)
				if v, ok := parseYesNo(input); ok {
					d.WantsMore = boolPtr(v)
					if v {
						// Another round: clear the topic so the graph
						// returns to the question.
						d.Topic = ""
					}
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := helpData(data)
				if verr != nil {
					return "Please answer yes or no. Is there anything else I can help with?"
				}
				return helpAnswerFor(d.Topic) + "\n\nIs there anything else I can help with? (yes or no)"
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := helpData(data)
				switch {
				case d.WantsMore == nil:
					return "", Stay
				case *d.WantsMore:
					return StepHelpTopic, Advance
				default:
					return "", Decline
				}
			},
		},
	}

	return &Graph{
		Task:  models.TaskPostEnrollmentHelp,
		Label: "plan help",
		First: StepHelpTopic,
		Steps: steps,
		NewData: func(p Profile) models.CollectedData {
			return &models.HelpData{}
		},
		CompleteText: func(data models.CollectedData) string {
			return "Glad I could help."
		},
		DeclineText: func(data models.CollectedData) string {
			return "Glad I could help. I'm here whenever you have more questions."
		},
	}
}

func init() {
	Register(helpGraph())
}
