package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshare/backend/internal/application/adapter"
)

var _ adapter.MutualMetrics = (*MutualMetrics)(nil)

func scrape(t *testing.T, m *MutualMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMutualMetrics(t *testing.T) {
	m := NewMutualMetrics()

	m.GroupCreated("Standard", 3)
	m.GroupCreated("Mobile", 2)
	m.InviteResponded(true)
	m.InviteResponded(true)
	m.InviteResponded(false)
	m.GroupPromoted("Standard")
	m.GroupStalled()

	body := scrape(t, m)
	assert.Contains(t, body, `mutual_groups_created_total{plan="Standard"} 1`)
	assert.Contains(t, body, `mutual_groups_created_total{plan="Mobile"} 1`)
	assert.Contains(t, body, "mutual_invites_sent_total 5")
	assert.Contains(t, body, `mutual_invite_responses_total{decision="accepted"} 2`)
	assert.Contains(t, body, `mutual_invite_responses_total{decision="declined"} 1`)
	assert.Contains(t, body, `mutual_groups_promoted_total{plan="Standard"} 1`)
	assert.Contains(t, body, "mutual_groups_stalled_total 1")
}

func TestMutualMetricsRegistry(t *testing.T) {
	m := NewMutualMetrics()
	m.GroupCreated("Premium", 0)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["mutual_groups_created_total"])
	assert.True(t, names["go_goroutines"])
	assert.Contains(t, scrape(t, m), "mutual_invites_sent_total 0")
}
