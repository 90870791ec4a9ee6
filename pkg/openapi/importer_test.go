package openapi_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func loadFixture(t *testing.T) *openapi.Document {
	t.Helper()
	return testsupport.MustLoadDocument(t, "testdata/employers.yaml", openapi.WithValidation(true))
}

func TestOperationsListsRequestBodies(t *testing.T) {
	doc := loadFixture(t)
	if diff := cmp.Diff([]string{"registerEmployer"}, doc.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if doc.Title() != "Recruitment API" {
		t.Fatalf("unexpected title %q", doc.Title())
	}
}

func TestFormFromOperation(t *testing.T) {
	schema, err := loadFixture(t).Form("registerEmployer")
	if err != nil {
		t.Fatalf("Form: %v", err)
	}

	if schema.Title() != "Employer Registration" || schema.Purpose() != model.PurposeEmployerRegistration {
		t.Fatalf("unexpected metadata %q %q", schema.Title(), schema.Purpose())
	}

	want := []string{
		"companyName", "companySize", "panNumber",
		"email", "phone",
		"certificate", "employees", "foundedOn", "newsletter",
		"confirmPassword", "password",
	}
	if diff := cmp.Diff(want, schema.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	var sections []string
	for _, section := range schema.Sections() {
		sections = append(sections, section.ID)
	}
	if diff := cmp.Diff([]string{"company", "contact", model.DefaultSection, "account"}, sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	kinds := map[string]model.FieldKind{}
	for _, field := range schema.Fields() {
		kinds[field.Key] = field.Kind
	}
	wantKinds := map[string]model.FieldKind{
		"companyName":     model.FieldKindText,
		"companySize":     model.FieldKindEnum,
		"panNumber":       model.FieldKindText,
		"email":           model.FieldKindEmail,
		"phone":           model.FieldKindPhone,
		"certificate":     model.FieldKindFile,
		"employees":       model.FieldKindNumber,
		"foundedOn":       model.FieldKindDate,
		"newsletter":      model.FieldKindBoolean,
		"password":        model.FieldKindPassword,
		"confirmPassword": model.FieldKindPassword,
	}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	pan, _ := schema.Field("panNumber")
	if pan.Label != "PAN" || !pan.Required {
		t.Fatalf("unexpected pan field %+v", pan)
	}

	record := model.Record{
		"companyName":     "A",
		"companySize":     "huge",
		"email":           "hr@acme.in",
		"phone":           "12345abcde",
		"panNumber":       "ABCDE1234F",
		"employees":       "0",
		"password":        "goodpass1",
		"confirmPassword": "goodpass2",
	}
	codes := map[string]string{}
	for key, issue := range validation.Validate(schema, record) {
		codes[key] = issue.Code
	}
	wantCodes := map[string]string{
		"companyName":     validation.CodeTooShort,
		"companySize":     validation.CodeInvalidEnum,
		"phone":           validation.CodeInvalidPhone,
		"employees":       validation.CodeTooSmall,
		"confirmPassword": validation.CodeMismatch,
	}
	if diff := cmp.Diff(wantCodes, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestFormErrors(t *testing.T) {
	doc := loadFixture(t)
	if _, err := doc.Form("missing"); !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := doc.Form("getEmployer"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := openapi.Load(testsupport.Context(), []byte("  ")); !errors.Is(err, openapi.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}
