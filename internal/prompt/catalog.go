// Package prompt holds the task-keyed catalog of instruction templates and
// sampling temperatures.
//
// The catalog is data-driven: adding an analysis task type means adding one
// entry here, nothing else. Templates are plain text substitution over the
// artifact descriptor; persona tone framing is applied by the analysis
// pipeline, never at this layer.
package prompt

import (
	"fmt"
	"strings"

	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/types"
)

// Temperature classes. Creative tasks get wider sampling, factual tasks
// narrower.
const (
	TempCreative float32 = 0.7
	TempBalanced float32 = 0.5
	TempFactual  float32 = 0.3
)

// OutputShape declares how a task's raw output is normalized downstream.
type OutputShape string

// Output shapes.
const (
	ShapeProse   OutputShape = "prose"
	ShapeTagList OutputShape = "tags"
)

// Prompt is a fully substituted instruction plus its sampling temperature.
type Prompt struct {
	Task        types.TaskType
	Instruction string
	Temperature float32
	Shape       OutputShape
}

type entry struct {
	template    string
	temperature float32
	shape       OutputShape
}

// The {{title}}, {{medium}}, and {{text}} placeholders are substituted from
// the artifact descriptor.
var catalog = map[types.TaskType]entry{
	types.TaskDescription: {
		template: "Write an engaging gallery description of the artwork titled \"{{title}}\" ({{medium}}). " +
			"Base the description only on the following source material:\n\n{{text}}\n\n" +
			"Respond with two to four sentences of prose and nothing else.",
		temperature: TempCreative,
		shape:       ShapeProse,
	},
	types.TaskStyle: {
		template: "Identify the artistic styles evident in the artwork titled \"{{title}}\" ({{medium}}), " +
			"based only on the following source material:\n\n{{text}}\n\n" +
			"Respond with a comma-separated list of style names and nothing else.",
		temperature: TempBalanced,
		shape:       ShapeTagList,
	},
	types.TaskTechniques: {
		template: "List the techniques and materials used in the artwork titled \"{{title}}\" ({{medium}}), " +
			"based only on the following source material:\n\n{{text}}\n\n" +
			"Respond with a comma-separated list of techniques and nothing else.",
		temperature: TempFactual,
		shape:       ShapeTagList,
	},
	types.TaskKeywords: {
		template: "Produce search keywords for the artwork titled \"{{title}}\" ({{medium}}), " +
			"based only on the following source material:\n\n{{text}}\n\n" +
			"Respond with a comma-separated list of keywords and nothing else.",
		temperature: TempFactual,
		shape:       ShapeTagList,
	},
	types.TaskAltText: {
		template: "Write concise accessibility alt text for the artwork titled \"{{title}}\" ({{medium}}), " +
			"based only on the following source material:\n\n{{text}}\n\n" +
			"Respond with a single sentence under 125 characters and nothing else.",
		temperature: TempFactual,
		shape:       ShapeProse,
	},
}

// Build returns the substituted prompt for a task over an artifact descriptor.
// Unknown task types are rejected before any I/O happens.
func Build(task types.TaskType, d *artifact.Descriptor) (*Prompt, error) {
	e, ok := catalog[task]
	if !ok {
		return nil, types.NewCodedError(types.CodeInvalidInput, fmt.Sprintf("unknown task type: %s", task), nil)
	}

	medium := d.Medium
	if medium == "" {
		medium = "medium unknown"
	}
	title := d.Title
	if title == "" {
		title = "Untitled"
	}

	r := strings.NewReplacer(
		"{{title}}", title,
		"{{medium}}", medium,
		"{{text}}", d.Text,
	)

	return &Prompt{
		Task:        task,
		Instruction: r.Replace(e.template),
		Temperature: e.temperature,
		Shape:       e.shape,
	}, nil
}
