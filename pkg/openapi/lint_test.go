package openapi_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/openapi"
)

const brokenDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "Broken", "version": "1"},
  "paths": {
    "/centers": {
      "post": {
        "operationId": "registerCenter",
        "x-formstate-purpose": 7,
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "properties": {
            "centerName": {"type": "string", "x-formstate-order": "first", "x-formstate-color": "red"},
            "computers": {"type": "integer", "x-formstate-enabled-when": "computerLab ==", "x-formstate-kind": "slider"},
            "confirmCode": {"type": "string", "x-formstate-equals": "code"}
          }
        }}}},
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestLintReportsExtensionProblems(t *testing.T) {
	doc, err := openapi.Load(context.Background(), []byte(brokenDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var got []string
	for _, v := range doc.Lint() {
		got = append(got, v.String())
	}
	want := []string{
		"operation > registerCenter -> x-formstate-purpose must be a string, found float64",
		"operation > registerCenter > properties.centerName -> unsupported extension \"x-formstate-color\"",
		"operation > registerCenter > properties.centerName -> x-formstate-order must be a number, found string",
		"operation > registerCenter > properties.computers -> unknown kind \"slider\"",
		"operation > registerCenter > properties.computers -> x-formstate-enabled-when: " + lintMessage(t, doc, "computers"),
		"operation > registerCenter > properties.confirmCode -> x-formstate-equals targets unknown property \"code\"",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLintFixtureOnlyFlagsNestedObject(t *testing.T) {
	var got []string
	for _, v := range loadFixture(t).Lint() {
		got = append(got, v.String())
	}
	want := []string{"operation > registerEmployer > properties.address -> property type is not importable and will be skipped"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

// lintMessage extracts the parser error for the enabled-when rule of key so
// the expectation does not pin the expression parser's wording.
func lintMessage(t *testing.T, doc *openapi.Document, key string) string {
	t.Helper()
	prefix := "x-formstate-enabled-when: "
	for _, v := range doc.Lint() {
		if v.Location == "operation > registerCenter > properties."+key && strings.HasPrefix(v.Message, prefix) {
			return strings.TrimPrefix(v.Message, prefix)
		}
	}
	t.Fatalf("no enabled-when violation for %s", key)
	return ""
}
