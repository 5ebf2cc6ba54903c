package domain

import "testing"

func TestValidCategory(t *testing.T) {
	t.Parallel()

	for _, c := range []Category{CategoryBilling, CategoryTechnical, CategoryFeature, CategoryGeneral} {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	for _, c := range []Category{"", "Billing", "spam", "feature_request"} {
		if ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = true", c)
		}
	}
}

func TestValidUrgency(t *testing.T) {
	t.Parallel()

	for _, u := range []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow} {
		if !ValidUrgency(u) {
			t.Errorf("ValidUrgency(%q) = false", u)
		}
	}
	for _, u := range []Urgency{"", "High", "urgent", "critical"} {
		if ValidUrgency(u) {
			t.Errorf("ValidUrgency(%q) = true", u)
		}
	}
}

func TestTicketPredicates(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{Status: TicketStatusPending}
	if !ticket.IsPending() {
		t.Error("pending ticket reported as not pending")
	}
	if ticket.IsHighPriority() {
		t.Error("unclassified ticket reported as high priority")
	}

	high := UrgencyHigh
	ticket.Status = TicketStatusProcessed
	ticket.Urgency = &high
	if ticket.IsPending() {
		t.Error("processed ticket reported as pending")
	}
	if !ticket.IsHighPriority() {
		t.Error("high-urgency ticket reported as not high priority")
	}
}
