package task

import (
	"strings"
	"testing"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

func TestHelpAnswerFor(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"how do I change my contribution", "contribution rate"},
		{"loan repayment", "payroll deduction"},
		{"switching funds", "investment election"},
		{"hardship withdrawal", "taxes and penalties"},
		{"employer match vesting", "vest"},
	}
	for _, c := range cases {
		got := helpAnswerFor(c.topic)
		if !strings.Contains(strings.ToLower(got), strings.ToLower(c.want)) {
			t.Errorf("helpAnswerFor(%q) = %q, expected it to mention %q", c.topic, got, c.want)
		}
	}

	if got := helpAnswerFor("something unrelated"); got != defaultHelpAnswer {
		t.Errorf("unmatched topic should get the default answer, got %q", got)
	}
}

func TestHelpGraph_TopicLoop(t *testing.T) {
	g, ok := Get(models.TaskPostEnrollmentHelp)
	if !ok {
		t.Fatal("help graph not registered")
	}
	data := g.NewData(Profile{})

	topic, _ := g.Step(StepHelpTopic)
	if err := topic.Validate("loans", data); err != nil {
		t.Fatalf("topic rejected: %v", err)
	}
	topic.Apply("loans", data)
	next, res := topic.Next(data)
	if next != StepHelpFollowup || res != Advance {
		t.Fatalf("topic resolved to (%s, %v), want (%s, Advance)", next, res, StepHelpFollowup)
	}

	followup, _ := g.Step(StepHelpFollowup)
	prompt := followup.Prompt(data, nil)
	if !strings.Contains(prompt, "payroll deduction") {
		t.Errorf("follow-up prompt should carry the loan answer, got %q", prompt)
	}

	// "yes" loops back to a fresh topic question.
	followup.Apply("yes", data)
	next, res = followup.Next(data)
	if next != StepHelpTopic || res != Advance {
		t.Fatalf("follow-up yes resolved to (%s, %v), want (%s, Advance)", next, res, StepHelpTopic)
	}
	if helpData(data).Topic != "" {
		t.Error("another round should clear the previous topic")
	}

	// Second round ends on "no".
	topic.Apply("vesting", data)
	followup.Apply("no", data)
	if _, res := followup.Next(data); res != Decline {
		t.Errorf("follow-up no should end the task, got %v", res)
	}
}

func TestHelpGraph_BlankTopicRejected(t *testing.T) {
	g, _ := Get(models.TaskPostEnrollmentHelp)
	topic, _ := g.Step(StepHelpTopic)
	if err := topic.Validate("   ", g.NewData(Profile{})); err == nil {
		t.Error("blank topic should be rejected")
	}
}
