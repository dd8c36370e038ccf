// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"fmt"
	"strings"
	"text/template"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
)

// fieldUpdate names the alias and the two variables of one aliased
// updateProjectV2ItemFieldValue operation.
type fieldUpdate struct {
	Alias    string
	FieldVar string
	ValueVar string
}

func fieldUpdates(n int) []fieldUpdate {
	updates := make([]fieldUpdate, n)
	for i := range updates {
		updates[i] = fieldUpdate{
			Alias:    fmt.Sprintf("field%d", i),
			FieldVar: fmt.Sprintf("field%d", i),
			ValueVar: fmt.Sprintf("value%d", i),
		}
	}
	return updates
}

// $projectId and $contentId are shared by every alias. $contentId is bound
// to the project item id.
var fieldUpdateBody = template.Must(template.New("fieldUpdate").Parse(`{{range .}}
  {{.Alias}}: updateProjectV2ItemFieldValue(
    input: {
      projectId: $projectId
      itemId: $contentId
      fieldId: ${{.FieldVar}}
      value: {text: ${{.ValueVar}}}
    }
  ) {
    projectV2Item {
      id
    }
  }
{{end}}`))

// GenerateFieldMutation returns the variable declarations and the operation
// body for a mutation that sets n project fields on one item. Field id
// variables are declared first, then value variables. The output depends
// only on n.
func GenerateFieldMutation(n int) (signature, body string, err error) {
	if n <= 0 {
		return "", "", fmt.Errorf("cannot generate mutation for %d fields: %w", n, projerrors.ErrNoFieldUpdates)
	}

	updates := fieldUpdates(n)

	params := make([]string, 0, 2*n)
	for _, u := range updates {
		params = append(params, fmt.Sprintf("$%s: ID!", u.FieldVar))
	}
	for _, u := range updates {
		params = append(params, fmt.Sprintf("$%s: String!", u.ValueVar))
	}

	var b strings.Builder
	if err := fieldUpdateBody.Execute(&b, updates); err != nil {
		return "", "", fmt.Errorf("failed to render field mutation: %w", err)
	}

	return strings.Join(params, ", "), b.String(), nil
}

// BuildFieldMutation returns the complete batched mutation document for n
// fields: 2n+2 declared variables and n aliased operations.
func BuildFieldMutation(n int) (string, error) {
	signature, body, err := GenerateFieldMutation(n)
	if err != nil {
		return "", err
	}
	return "mutation($projectId: ID!, $contentId: ID!, " + signature + ") {" + body + "}", nil
}

// fieldMutationVariables binds values positionally to the variables declared
// by BuildFieldMutation(len(values)).
func fieldMutationVariables(projectID, itemID string, values []FieldValue) map[string]any {
	variables := map[string]any{
		"projectId": projectID,
		"contentId": itemID,
	}
	for i, u := range fieldUpdates(len(values)) {
		variables[u.FieldVar] = values[i].FieldID
		variables[u.ValueVar] = values[i].Text()
	}
	return variables
}
