package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvite(t *testing.T) {
	tpl, err := NewTemplates("Metro Officials")
	require.NoError(t, err)

	msg, err := tpl.Render(Invitation{
		Kind:        KindInvite,
		Email:       "alice@example.com",
		ActionLink:  "https://dir.test/verify?token=abc",
		DisplayName: "Alice Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "You're Invited to Join Us!", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Alice,")
	assert.Contains(t, msg.HTML, "Metro Officials")
	assert.Contains(t, msg.HTML, `href="https://dir.test/verify?token=abc"`)
}

func TestRenderPasswordReset(t *testing.T) {
	tpl, err := NewTemplates("Metro Officials")
	require.NoError(t, err)

	msg, err := tpl.Render(Invitation{Kind: KindPasswordReset, Email: "bob@example.com", ActionLink: "https://dir.test/r"})
	require.NoError(t, err)
	assert.Equal(t, "Portal Update - Set Your New Password", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello,")
	assert.Contains(t, msg.HTML, "bob@example.com")
}

func TestRenderEscapesNames(t *testing.T) {
	tpl, err := NewTemplates("Org")
	require.NoError(t, err)
	msg, err := tpl.Render(Invitation{Kind: KindPasswordReset, Email: "x@example.com", DisplayName: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRenderUnknownKind(t *testing.T) {
	tpl, err := NewTemplates("Org")
	require.NoError(t, err)
	_, err = tpl.Render(Invitation{Kind: "welcome"})
	assert.Error(t, err)
}
