package tools

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// workflowDefinitionTemplate is the minimal importable workflow definition
// accepted by PUT /Workflow. Only the name varies per import; the GUID and
// modification time are generated at render time.
const workflowDefinitionTemplate = `<Workflow_WorkflowDefinition outputs="&lt;outputs/&gt;" inputs="&lt;inputs/&gt;" interactive="0" description="" manualPercentageComplete="0" apiMode="0" executeOnWeb="0" variables="&lt;variables/&gt;" revision="$Revision: $" modTime="{{ now | unixEpoch }}" uniqueGuid="{{ uuidv4 }}" name="{{ .Name }}" config="&lt;configuration/&gt;"><schema><outputs className="" type="" name="outputs" /><variables className="" type="" name="variables" /><inputs className="" type="" name="inputs" /><config className="" type="" name="configuration" /></schema><Start displayName="Start" description="" continueOnFailure="0" namespaceUri="commvault.cte.workflow.activities" commented="0" height="40" created="{{ now | unixEpoch }}" breakpoint="0" uniqueName="Start_1" skipAttempt="0" name="Start" width="60" x="45" y="41" /><onStart /><onComplete /></Workflow_WorkflowDefinition>`

var workflowTemplate = template.Must(
	template.New("workflow").Funcs(sprig.TxtFuncMap()).Parse(workflowDefinitionTemplate),
)

// renderWorkflowDefinition produces the importable XML for a workflow with
// the given name.
func renderWorkflowDefinition(name string) (string, error) {
	var buf bytes.Buffer
	if err := workflowTemplate.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", fmt.Errorf("rendering workflow definition: %w", err)
	}
	return buf.String(), nil
}
