package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactNames(t *testing.T) {
	cases := []struct {
		id   ArtifactID
		name string
	}{
		{ArtifactID{Shot: FiveShot, Method: CriteriaBased, TopicID: "elections"}, "criteria-based_elections.json"},
		{ArtifactID{Shot: FiveShot, Method: FreeForm, TopicID: "campus_protests"}, "free-form_campus_protests.json"},
		{ArtifactID{Shot: OneShot, Method: CriteriaBased, TopicID: "littering"}, "1-shot-criteria-based_littering.json"},
		{ArtifactID{Shot: OneShot, Method: FreeForm, TopicID: "campus_protests"}, "1-shot-free-form_campus_protests.json"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.id.Name())
		got, err := ParseArtifactName(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.id, got)
	}
}

func TestParseArtifactNameRejectsForeignFiles(t *testing.T) {
	for _, name := range []string{"formatted_results_all.txt", "diversity.json", "summary_elections.json"} {
		_, err := ParseArtifactName(name)
		assert.Error(t, err, name)
	}
}

func TestPerspectiveSetKeepsNumericOrder(t *testing.T) {
	set := make(PerspectiveSet, 0, PerspectivesPerSet)
	for i := 1; i <= PerspectivesPerSet; i++ {
		set = append(set, Perspective{Stance: "s" + strings.Repeat("x", i), Reason: "r"})
	}
	raw, err := json.Marshal(set)
	require.NoError(t, err)

	s := string(raw)
	assert.Less(t, strings.Index(s, `"2":`), strings.Index(s, `"10":`), "10 must follow 9, not 1")
	assert.NotContains(t, s, "Criteria")

	var back PerspectiveSet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, set, back)
}

func TestPerspectiveSetDoesNotEscapeHTML(t *testing.T) {
	set := PerspectiveSet{{Stance: "Audits & recounts", Criteria: []string{"<trust>"}, Reason: "a > b"}}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(set))
	assert.Contains(t, buf.String(), "Audits & recounts")
	assert.Contains(t, buf.String(), "<trust>")
}

func TestShotScopeOrders(t *testing.T) {
	assert.Equal(t, []ShotCount{OneShot, FiveShot}, ScopeAll.GenerationOrder())
	assert.Equal(t, []ShotCount{FiveShot, OneShot}, ScopeAll.ReportOrder())
	assert.Equal(t, []ShotCount{OneShot}, ScopeOneShot.ReportOrder())

	_, err := ParseShotScope("3-shot")
	assert.Error(t, err)
	sc, err := ParseShotScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, sc)
}
