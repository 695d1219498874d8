package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/internal/testutils"
)

func writeFlow(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestValidateFlow(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)

	// Scenario A: valid flow.
	writeFlow(t, dir, map[string]string{
		"signup/user-type.md": `---
id: userType
kind: choice
required: true
options: [customer, contractor]
---
Are you hiring, or offering your services?`,
		"signup/password.md": `---
id: password
kind: password
required: true
---
Choose a password.`,
		"signup/confirm.md": `---
id: confirmPassword
kind: password
match_field: password
---
Repeat it.`,
	})

	if err := ValidateFlow(repo, "signup"); err != nil {
		t.Errorf("valid flow failed validation: %v", err)
	}

	// Scenario B: one flow, many problems, all reported at once.
	writeFlow(t, dir, map[string]string{
		"broken/kind.md": `---
id: a
kind: slider
---
Pick a value.`,
		"broken/choice.md": `---
id: b
kind: choice
---
Choose one.`,
		"broken/check.md": `---
id: c
kind: text
check: phoneNumber
---
Your number.`,
		"broken/skip.md": `---
id: d
kind: text
skip_when: "=== nonsense"
---
Maybe.`,
		"broken/confirm.md": `---
id: e
kind: password
match_field: ghost
---
Repeat.`,
	})

	err := ValidateFlow(repo, "broken")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "found 5 errors")
	assert.Contains(t, msg, "unknown kind 'slider'")
	assert.Contains(t, msg, "declares no options")
	assert.Contains(t, msg, "unknown check 'phoneNumber'")
	assert.Contains(t, msg, "invalid skip_when")
	assert.Contains(t, msg, "match_field 'ghost'")
}

func TestValidateFlow_DuplicateIDs(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)

	writeFlow(t, dir, map[string]string{
		"signup/a.md": `---
id: email
kind: email
---
Your email.`,
		"signup/b.md": `---
id: email
kind: text
---
Your email, again.`,
	})

	err := ValidateFlow(repo, "signup")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "duplicate step id 'email'"), "got: %v", err)
}

func TestValidateFlow_TerminalCheckbox(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)

	writeFlow(t, dir, map[string]string{
		"signup/name.md": `---
id: fullName
kind: text
position: 10
required: true
---
Your name.`,
		"signup/terms.md": `---
id: terms
kind: checkbox
position: 20
---
Agree to the terms?`,
	})

	err := ValidateFlow(repo, "signup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal checkbox step is not required")

	// Marking it required resolves the report.
	writeFlow(t, dir, map[string]string{
		"signup/terms.md": `---
id: terms
kind: checkbox
position: 20
required: true
---
Agree to the terms?`,
	})
	assert.NoError(t, ValidateFlow(repo, "signup"))
}

func TestValidateFlow_Missing(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)

	err := ValidateFlow(repo, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flow not found")
}
