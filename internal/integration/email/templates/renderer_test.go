package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	t.Run("mutual invitation", func(t *testing.T) {
		html, text, err := renderer.Render("mutual_invitation", MutualInvitationData{
			UserName:     "Asha",
			PlanName:     "Standard",
			FullPrice:    "499.00",
			SplitPrice:   "249.50",
			Savings:      "249.50",
			MemberCount:  2,
			AdminMessage: "<b>save together</b>",
			InvitesURL:   "https://app.example.com/mutual/invites",
		})
		require.NoError(t, err)

		assert.Contains(t, html, "Hi Asha,")
		assert.Contains(t, html, "Rs. 249.50")
		assert.Contains(t, html, "&lt;b&gt;save together&lt;/b&gt;")
		assert.Contains(t, text, "Your share: Rs. 249.50")
		assert.Contains(t, text, "https://app.example.com/mutual/invites")
	})

	t.Run("message block is omitted when empty", func(t *testing.T) {
		text, err := renderer.RenderText("mutual_invitation", MutualInvitationData{PlanName: "Mobile", MemberCount: 3})
		require.NoError(t, err)
		assert.Contains(t, text, "Hi there,")
		assert.NotContains(t, text, `""`)
	})

	t.Run("group active", func(t *testing.T) {
		html, err := renderer.RenderHTML("mutual_group_active", MutualGroupActiveData{
			UserName:    "Bilal",
			PlanName:    "Premium",
			SplitPrice:  "324.50",
			MemberCount: 2,
		})
		require.NoError(t, err)
		assert.Contains(t, html, "Premium")
		assert.Contains(t, html, "Rs. 324.50")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, err := renderer.Render("password_reset", nil)
		assert.Error(t, err)
	})
}
