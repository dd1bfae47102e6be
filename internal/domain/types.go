/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "time"

// Ticket is the canonical in-memory shape of a completed tracker item.
// Immutable once fetched within a run.
type Ticket struct {
	ID          string
	Title       string
	Description string
	UpdatedAt   time.Time
	Team        string
	Project     *Project
	Assignee    *Assignee
	Labels      []string
	Comments    []Comment
}

type Project struct {
	Name        string
	Initiatives []string
}

type Assignee struct {
	Name  string
	Email string
}

type Comment struct {
	Author string
	Body   string
}

// AssigneeLabel renders the assignee for prompts ("Unassigned" when absent).
func (t Ticket) AssigneeLabel() string {
	if t.Assignee == nil { return "Unassigned" }
	if t.Assignee.Name == "" { return t.Assignee.Email }
	return t.Assignee.Name
}

func (t Ticket) ProjectName() string {
	if t.Project == nil { return "None" }
	return t.Project.Name
}

func (t Ticket) InitiativeNames() []string {
	if t.Project == nil { return nil }
	return t.Project.Initiatives
}

type DecisionKind string

const (
	DecisionFeature DecisionKind = "feature"
	DecisionFix     DecisionKind = "fix"
	DecisionExclude DecisionKind = "exclude"
)

// Decision is the model's per-ticket verdict plus a short rationale.
type Decision struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Decision DecisionKind `json:"decision"`
	Reason   string       `json:"reason"`
}

// ClassifiedTicket pairs a ticket with the reason attached by the classifier.
type ClassifiedTicket struct {
	Ticket Ticket
	Reason string
}

// Classification partitions every input ticket into exactly one bucket.
type Classification struct {
	Features []ClassifiedTicket
	Fixes    []ClassifiedTicket
	Excluded []ClassifiedTicket
}

func (c Classification) Empty() bool {
	return len(c.Features) == 0 && len(c.Fixes) == 0
}

func (c Classification) Total() int {
	return len(c.Features) + len(c.Fixes) + len(c.Excluded)
}

// Group is a customer-legible bundle of tickets representing one capability.
// Members referencing unknown ids are synthesized as placeholder tickets
// (title "Unknown") rather than failing the run.
type Group struct {
	Name    string
	Summary string
	Tickets []Ticket
}

type Grouping struct {
	Groups         []Group
	UngroupedFixes []Ticket
}

// Meeting is one customer meeting with notes, transient within a run.
// Date is a YYYY-MM-DD string; meetings sort lexicographically on it.
type Meeting struct {
	Title string
	Date  string
	Notes string
}
