package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

var (
	//go:embed template/synthesizer.txt
	synthesizerRaw string

	//go:embed template/plan.tmpl
	planRaw string

	//go:embed template/specialist.tmpl
	specialistRaw string

	//go:embed template/coordinator_synthesis.tmpl
	coordinatorSynthesisRaw string

	//go:embed template/parallel_synthesis.tmpl
	parallelSynthesisRaw string
)

var funcs = template.FuncMap{"join": strings.Join}

var (
	planTmpl                 = template.Must(template.New("plan").Funcs(funcs).Parse(planRaw))
	specialistTmpl           = template.Must(template.New("specialist").Parse(specialistRaw))
	coordinatorSynthesisTmpl = template.Must(template.New("coordinator_synthesis").Parse(coordinatorSynthesisRaw))
	parallelSynthesisTmpl    = template.Must(template.New("parallel_synthesis").Parse(parallelSynthesisRaw))
)

// Synthesizer is the behavior descriptor of the parallel merge step.
func Synthesizer() string {
	return strings.TrimSpace(synthesizerRaw)
}

func Plan(task string, specializations []string) (string, error) {
	return render(planTmpl, map[string]any{
		"Task":            task,
		"Specializations": specializations,
	})
}

func Specialist(plan, specialization, task string) (string, error) {
	return render(specialistTmpl, map[string]any{
		"Plan":           plan,
		"Specialization": specialization,
		"Task":           task,
	})
}

func CoordinatorSynthesis(task, plan string, steps []statex.StepResult) (string, error) {
	return render(coordinatorSynthesisTmpl, map[string]any{
		"Task":  task,
		"Plan":  plan,
		"Steps": steps,
	})
}

func ParallelSynthesis(task string, steps []statex.StepResult) (string, error) {
	return render(parallelSynthesisTmpl, map[string]any{
		"Task":  task,
		"Steps": steps,
	})
}

func render(t *template.Template, data map[string]any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}
