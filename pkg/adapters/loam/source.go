package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/stile/pkg/domain"
)

// Source adapts the Loam library to the stile CatalogSource interface.
//
// A flow is a directory of markdown step documents: the frontmatter declares
// the step (kind, options, conditions), the body is the prompt. The document
// path below the flow directory becomes the step's default ID.
type Source struct {
	Repo *loam.TypedRepository[StepMetadata]
}

// New creates a new Loam adapter from a typed repository.
func New(repo *loam.TypedRepository[StepMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository rooted at path and wraps it
// as a catalog source.
func Open(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog directory %s: %w", path, err)
	}

	return New(loam.NewTypedRepository[StepMetadata](repo)), nil
}

// stepDoc pairs a converted step with its ordering key.
type stepDoc struct {
	step     domain.Step
	position int
	docID    string
}

// Load retrieves the catalog for a named flow.
func (s *Source) Load(ctx context.Context, flow string) (*domain.Catalog, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	prefix := flow + "/"
	var stepDocs []stepDoc

	for _, doc := range docs {
		docID := trimExtension(doc.ID)
		if !strings.HasPrefix(docID, prefix) {
			continue
		}

		step, err := convertStep(docID, strings.TrimPrefix(docID, prefix), doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}

		stepDocs = append(stepDocs, stepDoc{
			step:     step,
			position: doc.Data.Position,
			docID:    docID,
		})
	}

	if len(stepDocs) == 0 {
		return nil, fmt.Errorf("flow not found: %s", flow)
	}

	sort.SliceStable(stepDocs, func(i, j int) bool {
		if stepDocs[i].position != stepDocs[j].position {
			return stepDocs[i].position < stepDocs[j].position
		}
		return stepDocs[i].docID < stepDocs[j].docID
	})

	steps := make([]domain.Step, len(stepDocs))
	for i, sd := range stepDocs {
		steps[i] = sd.step
	}

	catalog, err := domain.NewCatalog(steps...)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", flow, err)
	}
	return catalog, nil
}

// convertStep turns one document into a catalog step.
func convertStep(docID, fallbackID string, meta StepMetadata, content string) (domain.Step, error) {
	id := meta.ID
	if id == "" {
		id = fallbackID
	}

	kind := domain.Kind(meta.Kind)
	if meta.Kind == "" {
		kind = domain.KindText
	}

	step := domain.Step{
		ID:         id,
		Field:      meta.Field,
		Kind:       kind,
		Prompt:     strings.TrimSpace(content),
		Options:    meta.Options,
		Required:   meta.Required,
		MatchField: meta.MatchField,
		Check:      meta.Check,
		Metadata:   meta.Metadata,
	}

	if meta.SkipWhen != "" {
		pred, err := domain.CompileCondition(meta.SkipWhen)
		if err != nil {
			return domain.Step{}, fmt.Errorf("step %s: invalid skip_when: %w", docID, err)
		}
		step.SkipWhen = pred
	}

	if len(meta.Schema) > 0 {
		rowSchema, err := normalizeSchema(meta.Schema)
		if err != nil {
			return domain.Step{}, fmt.Errorf("step %s: %w", docID, err)
		}
		step.Schema = rowSchema
	}

	return step, nil
}

// Flows lists the flow names available from this source, one per top-level
// directory.
func (s *Source) Flows(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]bool)
	var flows []string
	for _, doc := range docs {
		docID := trimExtension(doc.ID)
		flow, _, ok := strings.Cut(docID, "/")
		if !ok || seen[flow] {
			continue
		}
		seen[flow] = true
		flows = append(flows, flow)
	}
	sort.Strings(flows)
	return flows, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Collapse bursts: one pending signal is enough for a
				// full catalog reload.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
