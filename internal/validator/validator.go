// Package validator lints flow catalogs before they are served, reporting
// every problem at once instead of failing on the first.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	loamadapter "github.com/aretw0/stile/pkg/adapters/loam"
	"github.com/aretw0/stile/pkg/domain"
)

var knownChecks = map[string]bool{
	domain.CheckEmail:      true,
	domain.CheckInviteCode: true,
}

// ValidateFlow checks every step document of the named flow: unknown kinds,
// option-less choices, dangling match_field references, unknown remote
// checks, invalid skip_when expressions, duplicate IDs.
func ValidateFlow(repo core.Repository, flow string) error {
	typedRepo := loam.NewTypedRepository[loamadapter.StepMetadata](repo)
	ctx := context.Background()

	docs, err := typedRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list flow documents: %w", err)
	}

	prefix := flow + "/"
	kinds := make(map[domain.Kind]bool, len(domain.Kinds))
	for _, k := range domain.Kinds {
		kinds[k] = true
	}

	var problems []string
	seen := make(map[string]string)
	fields := make(map[string]bool)
	count := 0

	var lastDoc string
	var lastMeta loamadapter.StepMetadata
	lastPos := -1

	for _, doc := range docs {
		docID := trimExtension(doc.ID)
		if !strings.HasPrefix(docID, prefix) {
			continue
		}
		count++

		meta := doc.Data
		id := meta.ID
		if id == "" {
			id = strings.TrimPrefix(docID, prefix)
		}

		if prev, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate step id '%s' (also declared by %s)", docID, id, prev))
		}
		seen[id] = docID

		field := meta.Field
		if field == "" {
			field = id
		}
		fields[field] = true

		if meta.Kind != "" && !kinds[domain.Kind(meta.Kind)] {
			problems = append(problems, fmt.Sprintf("%s: unknown kind '%s'", docID, meta.Kind))
		}

		switch domain.Kind(meta.Kind) {
		case domain.KindChoice, domain.KindChoiceMulti:
			if len(meta.Options) == 0 {
				problems = append(problems, fmt.Sprintf("%s: %s step declares no options", docID, meta.Kind))
			}
		}

		if meta.Check != "" && !knownChecks[meta.Check] {
			problems = append(problems, fmt.Sprintf("%s: unknown check '%s'", docID, meta.Check))
		}

		if meta.SkipWhen != "" {
			if _, err := domain.CompileCondition(meta.SkipWhen); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid skip_when: %v", docID, err))
			}
		}

		if meta.Position >= lastPos {
			lastDoc, lastMeta, lastPos = docID, meta, meta.Position
		}
	}

	if count == 0 {
		return fmt.Errorf("flow not found: %s", flow)
	}

	// A terminal checkbox that is not required cannot gate submission.
	if domain.Kind(lastMeta.Kind) == domain.KindCheckbox && !lastMeta.Required {
		problems = append(problems, fmt.Sprintf("%s: terminal checkbox step is not required, so it cannot gate submission", lastDoc))
	}

	// match_field targets can only be resolved once every field is known.
	for _, doc := range docs {
		docID := trimExtension(doc.ID)
		if !strings.HasPrefix(docID, prefix) {
			continue
		}
		if mf := doc.Data.MatchField; mf != "" && !fields[mf] {
			problems = append(problems, fmt.Sprintf("%s: match_field '%s' does not name a field in this flow", docID, mf))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}

	return nil
}

func trimExtension(id string) string {
	if idx := strings.LastIndex(id, "."); idx > strings.LastIndex(id, "/") {
		return id[:idx]
	}
	return id
}
