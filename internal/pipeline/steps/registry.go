// Package steps defines the stages of the brand and content runs, their
// categories and dependencies, and checks dependencies against recorded
// step statuses.
package steps

import (
	"context"
	"fmt"
	"sort"
)

// Step names.
const (
	AnalyzeProfile   = "analyze_profile"
	AnalyzeUploaded  = "analyze_uploaded"
	MergeProfiles    = "merge_profiles"
	RenderGuidelines = "render_guidelines"
	GenerateCaption  = "generate_caption"
	AnalyzeImages    = "analyze_images"
	ComposePrompt    = "compose_prompt"
	GenerateImage    = "generate_image"
)

// Step categories.
const (
	CategoryBrand   = "brand"
	CategoryContent = "content"
	CategoryImage   = "image"
)

// Step statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)

// StepDefinition defines metadata for a pipeline step.
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
	// Order is the position of the step in a full run.
	Order int
}

// StepRegistry holds all step definitions.
var StepRegistry = map[string]StepDefinition{
	AnalyzeProfile: {
		Name:     AnalyzeProfile,
		Category: CategoryBrand,
		Order:    1,
	},
	AnalyzeUploaded: {
		Name:     AnalyzeUploaded,
		Category: CategoryBrand,
		Order:    2,
	},
	MergeProfiles: {
		Name:         MergeProfiles,
		Category:     CategoryBrand,
		Dependencies: []string{AnalyzeProfile},
		Optional:     []string{AnalyzeUploaded},
		Order:        3,
	},
	RenderGuidelines: {
		Name:         RenderGuidelines,
		Category:     CategoryBrand,
		Dependencies: []string{MergeProfiles},
		Order:        4,
	},
	GenerateCaption: {
		Name:         GenerateCaption,
		Category:     CategoryContent,
		Dependencies: []string{RenderGuidelines},
		Order:        5,
	},
	AnalyzeImages: {
		Name:     AnalyzeImages,
		Category: CategoryContent,
		Order:    6,
	},
	ComposePrompt: {
		Name:         ComposePrompt,
		Category:     CategoryImage,
		Dependencies: []string{RenderGuidelines, GenerateCaption, AnalyzeImages},
		Order:        7,
	},
	GenerateImage: {
		Name:         GenerateImage,
		Category:     CategoryImage,
		Dependencies: []string{ComposePrompt},
		Order:        8,
	},
}

// BrandRun lists the steps of a brand run in order.
var BrandRun = []string{AnalyzeProfile, AnalyzeUploaded, MergeProfiles, RenderGuidelines}

// ContentRun lists the steps of a content run in order. The guidelines are
// supplied by the caller, so the run starts at the caption.
var ContentRun = []string{GenerateCaption, AnalyzeImages, ComposePrompt, GenerateImage}

// StatusSource reports the recorded status of a step in a run. It returns ""
// for a step that was never recorded.
type StatusSource interface {
	StepStatus(ctx context.Context, runID, step string) (string, error)
}

// DependencyError represents a dependency validation error.
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Lookup returns the definition of a step.
func Lookup(stepName string) (StepDefinition, error) {
	def, ok := StepRegistry[stepName]
	if !ok {
		return StepDefinition{}, fmt.Errorf("unknown step: %s", stepName)
	}
	return def, nil
}

// ValidateDependencies checks that every required dependency of a step is
// completed. Dependencies that belong to the other run kind and were never
// recorded are treated as supplied by the caller.
func ValidateDependencies(ctx context.Context, src StatusSource, runID, stepName string) error {
	def, err := Lookup(stepName)
	if err != nil {
		return err
	}

	var missing []string
	for _, dep := range def.Dependencies {
		status, err := src.StepStatus(ctx, runID, dep)
		if err != nil {
			return fmt.Errorf("failed to check dependency %s: %w", dep, err)
		}
		if status == "" && !sameRun(stepName, dep) {
			continue
		}
		if status != StatusCompleted {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

func sameRun(a, b string) bool {
	return contains(BrandRun, a) == contains(BrandRun, b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Sort orders step names by their position in a full run. Unknown steps go last.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return orderOf(names[i]) < orderOf(names[j])
	})
}

func orderOf(name string) int {
	if def, ok := StepRegistry[name]; ok {
		return def.Order
	}
	return len(StepRegistry) + 1
}
