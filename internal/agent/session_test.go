package agent

import (
	"context"
	"testing"

	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/task"
)

func TestManager_CreateGetEnd(t *testing.T) {
	m := NewManager(task.Profile{AccountBalance: 85000, AnnualSalary: 60000}, nil, nil)

	a := m.Create(models.SessionRequest{})
	if a.ID() == "" {
		t.Fatal("created session should have an id")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}

	got, ok := m.Get(a.ID())
	if !ok || got != a {
		t.Error("Get should return the created agent")
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get should miss unknown ids")
	}

	if !m.End(a.ID()) {
		t.Error("End should succeed for a live session")
	}
	if m.End(a.ID()) {
		t.Error("End should fail for an already ended session")
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d, want 0", m.Count())
	}
}

func TestManager_ProfileOverrides(t *testing.T) {
	m := NewManager(task.Profile{AccountBalance: 85000, AnnualSalary: 60000}, nil, nil)

	// Overridden balance flows into the loan graph's data.
	a := m.Create(models.SessionRequest{AccountBalance: 40000})
	a.HandleTurn(context.Background(), "I need a loan")
	data, ok := a.Snapshot().Data.(*models.LoanData)
	if !ok {
		t.Fatal("expected loan data")
	}
	if data.AccountBalance != 40000 {
		t.Errorf("balance = %v, want the override 40000", data.AccountBalance)
	}

	// Defaults apply when the request omits values.
	b := m.Create(models.SessionRequest{})
	b.HandleTurn(context.Background(), "I need a loan")
	data, _ = b.Snapshot().Data.(*models.LoanData)
	if data.AccountBalance != 85000 {
		t.Errorf("balance = %v, want the default 85000", data.AccountBalance)
	}
}
