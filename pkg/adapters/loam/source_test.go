package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/internal/testutils"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
)

func writeFlow(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func signupFiles() map[string]string {
	return map[string]string{
		"signup/user-type.md": `---
id: userType
kind: choice
position: 10
required: true
options:
  - customer
  - contractor
---
Are you hiring, or offering your services?`,
		"signup/invite-code.md": `---
id: inviteCode
kind: text
position: 20
required: true
check: inviteCode
skip_when: userType != 'contractor'
---
Enter your invitation code.`,
		"signup/email.md": `---
id: email
kind: email
position: 30
required: true
check: email
---
What's your email, {{.fullName}}?`,
		"signup/full-name.md": `---
id: fullName
kind: text
position: 25
required: true
---
What's your full name?`,
		"signup/licenses.md": `---
id: licenses
kind: compound
position: 40
schema:
  state: string
  number: string
  trades: [string]
---
List your trade licenses.`,
		"signup/terms.md": `---
id: terms
kind: checkbox
position: 50
required: true
metadata:
  link: /legal/terms
---
Do you agree to the terms of service?`,
	}
}

func newTestSource(t *testing.T) *Source {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	writeFlow(t, tmpDir, signupFiles())
	return New(loam.NewTypedRepository[StepMetadata](repo))
}

func TestSource_Contract(t *testing.T) {
	source := newTestSource(t)
	ports.RunCatalogSourceContract(t, source, "signup", []string{
		"userType", "inviteCode", "fullName", "email", "licenses", "terms",
	})
}

func TestSource_Load(t *testing.T) {
	source := newTestSource(t)
	ctx := context.Background()

	catalog, err := source.Load(ctx, "signup")
	require.NoError(t, err)

	t.Run("position ordering beats filename order", func(t *testing.T) {
		assert.Equal(t, 2, catalog.Position("fullName"), "full-name.md sorts after invite-code.md but position 25 wins")
	})

	t.Run("frontmatter maps onto the step", func(t *testing.T) {
		step, ok := catalog.Get("userType")
		require.True(t, ok)
		assert.Equal(t, domain.KindChoice, step.Kind)
		assert.Equal(t, []string{"customer", "contractor"}, step.Options)
		assert.True(t, step.Required)
		assert.Equal(t, "Are you hiring, or offering your services?", step.Prompt)

		email, ok := catalog.Get("email")
		require.True(t, ok)
		assert.Equal(t, domain.CheckEmail, email.Check)
	})

	t.Run("skip_when compiles to a predicate", func(t *testing.T) {
		step, ok := catalog.Get("inviteCode")
		require.True(t, ok)
		require.NotNil(t, step.SkipWhen)
		assert.True(t, step.Skipped(domain.Values{"userType": "customer"}))
		assert.False(t, step.Skipped(domain.Values{"userType": "contractor"}))
	})

	t.Run("schema declaration validates rows", func(t *testing.T) {
		step, ok := catalog.Get("licenses")
		require.True(t, ok)
		require.NotNil(t, step.Schema)
		assert.Len(t, step.Schema, 3)
	})

	t.Run("metadata passthrough", func(t *testing.T) {
		step, ok := catalog.Get("terms")
		require.True(t, ok)
		assert.Equal(t, "/legal/terms", step.Metadata["link"])
	})
}

func TestSource_MultipleFlows(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	files := signupFiles()
	files["add-business/business-name.md"] = `---
kind: text
required: true
---
What's your business called?`
	writeFlow(t, tmpDir, files)

	source := New(loam.NewTypedRepository[StepMetadata](repo))
	ctx := context.Background()

	flows, err := source.Flows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"add-business", "signup"}, flows)

	t.Run("implicit id from filename", func(t *testing.T) {
		catalog, err := source.Load(ctx, "add-business")
		require.NoError(t, err)
		_, ok := catalog.Get("business-name")
		assert.True(t, ok, "steps without an explicit id take the filename")
	})
}

func TestSource_InvalidSkipWhen(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	writeFlow(t, tmpDir, map[string]string{
		"bad/step.md": `---
kind: text
skip_when: "=== nonsense"
---
Broken.`,
	})

	source := New(loam.NewTypedRepository[StepMetadata](repo))
	_, err := source.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skip_when")
}
