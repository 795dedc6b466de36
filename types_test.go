package premortem

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupQueryCapsOnRuneBoundary(t *testing.T) {
	s := FailureScenario{Title: strings.Repeat("é", MaxLookupQueryBytes), RootCause: "tail"}
	q := s.LookupQuery()
	assert.LessOrEqual(t, len(q), MaxLookupQueryBytes)
	assert.True(t, utf8.ValidString(q))

	assert.Equal(t, "Pool exhaustion Leaked connections",
		FailureScenario{Title: "Pool exhaustion", RootCause: "Leaked connections"}.LookupQuery())
}

func TestLookupQueryKeepsTextAroundInvalidBytes(t *testing.T) {
	s := FailureScenario{Title: "a\xffb insulin", RootCause: strings.Repeat("x", 3000)}
	q := s.LookupQuery()
	assert.Len(t, q, MaxLookupQueryBytes)
	assert.True(t, strings.HasPrefix(q, "a\xffb insulin "))

	// A three byte rune split by the cut is dropped whole.
	q = CapQuery(strings.Repeat("a", MaxLookupQueryBytes-1) + "€")
	assert.Len(t, q, MaxLookupQueryBytes-1)
	assert.True(t, utf8.ValidString(q))
}

func TestContentAndVetoed(t *testing.T) {
	s := FailureScenario{Title: "Dosage", RootCause: " Drift", Impact: " PATIENT harm"}
	assert.Equal(t, "dosage driftpatient harm", s.Content())
	assert.False(t, s.Vetoed(DefaultVetoMarker))
	s.Title = DefaultVetoMarker + s.Title
	assert.True(t, s.Vetoed(DefaultVetoMarker))
	assert.False(t, s.Vetoed(""))
}

func TestCloneDoesNotAlias(t *testing.T) {
	src := FailureScenario{
		ID:                      "S1",
		Prevention:              []string{"a"},
		CausalChain:             []FailureStep{{Step: 1}},
		MinimalPreventiveChange: &MinimalPreventiveChange{Likelihood: 0.4},
		AuthoritativeLookup:     &AuthoritativeLookup{Source: NIST},
	}
	c := src.Clone()
	c.Prevention[0] = "b"
	c.CausalChain[0].Step = 2
	c.MinimalPreventiveChange.Likelihood = 0.9
	c.AuthoritativeLookup.Found = true

	assert.Equal(t, "a", src.Prevention[0])
	assert.Equal(t, 1, src.CausalChain[0].Step)
	assert.Equal(t, 0.4, src.MinimalPreventiveChange.Likelihood)
	assert.False(t, src.AuthoritativeLookup.Found)

	a := PreMortemAnalysis{Scenarios: []FailureScenario{src}, StackVulnerabilities: []string{"x"}}
	ac := a.Clone()
	ac.Scenarios[0].Title = "changed"
	ac.StackVulnerabilities[0] = "y"
	assert.Empty(t, a.Scenarios[0].Title)
	assert.Equal(t, "x", a.StackVulnerabilities[0])
}

func TestReportSummary(t *testing.T) {
	r := Report{
		ID:      NewID(),
		Owner:   "AGENT_1",
		Request: AnalysisRequest{Title: "Nexus"},
		Analysis: PreMortemAnalysis{
			OverallRiskScore: 70,
			ExecutiveMetrics: ExecutiveMetrics{DecisionStatus: NoGo},
			Scenarios:        make([]FailureScenario, 3),
		},
		Decisions: []Decision{{Vetoed: true}, {}, {Vetoed: true}},
	}
	s := r.Summary()
	assert.Equal(t, r.ID, s.ID)
	assert.Equal(t, "Nexus", s.Title)
	assert.Equal(t, "AGENT_1", s.Owner)
	assert.Equal(t, NoGo, s.DecisionStatus)
	assert.Equal(t, 3, s.Scenarios)
	assert.Equal(t, 2, s.Vetoed)
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	r := []ReportSummary{
		{ID: "b", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(time.Hour)},
		{ID: "a", CreatedAt: t0},
		{ID: "d", CreatedAt: t0.Add(-time.Hour)},
	}
	SortNewestFirst(r)
	var ids []string
	for _, s := range r {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}

func TestIDs(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidID(a))
	assert.False(t, ValidID("S1"))
}

func TestErrorCodes(t *testing.T) {
	base := errors.New("registry down")
	err := fmt.Errorf("lookup: %w", NewError(LookupUnavailable, base, "q"))
	assert.True(t, IsLookupUnavailable(err))
	assert.False(t, IsGenerationFailure(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, Unknown, CodeOf(base))
	assert.Equal(t, "LookupUnavailable: registry down, user data: q", errors.Unwrap(err).Error())

	var e Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "q", e.UserData)
}
