package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func registrationSchema(t *testing.T) *model.Schema {
	t.Helper()
	schema, err := model.NewBuilder("registration").
		Title("Registration").
		Section("personal", "Personal Information",
			model.Field{Key: "fullName", Kind: model.FieldKindText, Required: true, Rules: []model.ValidationRule{model.MinLength(2)}},
			model.Field{Key: "email", Kind: model.FieldKindEmail, Required: true},
			model.Field{Key: "phone", Kind: model.FieldKindPhone, Required: true, Rules: []model.ValidationRule{model.Pattern(`[0-9]{10}`, "10 digits")}},
			model.Field{Key: "middleName", Kind: model.FieldKindText},
		).
		Section("address", "Address",
			model.Field{Key: "postalCode", Kind: model.FieldKindText, Required: true, Rules: []model.ValidationRule{model.Pattern(`[0-9]{6}`, "6 digits")}},
			model.Field{Key: "experienceYears", Kind: model.FieldKindNumber, Rules: []model.ValidationRule{model.Min(0), model.Max(50)}},
			model.Field{Key: "category", Kind: model.FieldKindEnum, Options: []string{"general", "obc", "sc", "st"}},
		).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return schema
}

func passwordSchema(t *testing.T) *model.Schema {
	t.Helper()
	schema, err := model.NewBuilder("password-change").
		Section("password", "Change Password",
			model.Field{Key: "newPassword", Kind: model.FieldKindPassword, Required: true, Rules: []model.ValidationRule{model.MinLength(8)}},
			model.Field{Key: "confirmPassword", Kind: model.FieldKindPassword, Required: true, Rules: []model.ValidationRule{model.EqualsField("newPassword")}},
		).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return schema
}

func validRegistration() model.Record {
	return model.Record{
		"fullName":        "Asha Rao",
		"email":           "asha@example.com",
		"phone":           "9876543210",
		"postalCode":      "560001",
		"experienceYears": "4",
		"category":        "general",
	}
}

func codes(result validation.Result) map[string]string {
	out := make(map[string]string, len(result))
	for key, issue := range result {
		out[key] = issue.Code
	}
	return out
}

func TestValidateAcceptsValidRecord(t *testing.T) {
	result := validation.Validate(registrationSchema(t), validRegistration())
	if !result.Valid() {
		t.Fatalf("expected valid record, got %v", result.Messages())
	}
}

func TestValidateRequiredFieldsIndependently(t *testing.T) {
	schema := registrationSchema(t)

	for _, key := range []string{"fullName", "email", "phone", "postalCode"} {
		for _, empty := range []any{nil, "", "   "} {
			record := validRegistration()
			if empty == nil {
				delete(record, key)
			} else {
				record[key] = empty
			}

			result := validation.Validate(schema, record)
			want := map[string]string{key: validation.CodeRequired}
			if diff := cmp.Diff(want, codes(result)); diff != "" {
				t.Fatalf("%s=%q mismatch (-want +got):\n%s", key, empty, diff)
			}
			if got := result[key].Message; got != "this field is required" {
				t.Fatalf("unexpected message %q", got)
			}
		}
	}
}

func TestValidateOptionalEmptyFieldsPass(t *testing.T) {
	record := validRegistration()
	record["middleName"] = ""
	record["experienceYears"] = "  "
	delete(record, "category")

	if result := validation.Validate(registrationSchema(t), record); !result.Valid() {
		t.Fatalf("expected optional empties to pass, got %v", result.Messages())
	}
}

func TestValidateAggregatesEveryFailingField(t *testing.T) {
	record := model.Record{
		"fullName":        "A",
		"email":           "not-an-email",
		"phone":           "12345",
		"postalCode":      "1A2B3C",
		"experienceYears": "lots",
		"category":        "vip",
	}

	want := map[string]string{
		"fullName":        validation.CodeTooShort,
		"email":           validation.CodeInvalidEmail,
		"phone":           validation.CodeInvalidPhone,
		"postalCode":      validation.CodePattern,
		"experienceYears": validation.CodeNotANumber,
		"category":        validation.CodeInvalidEnum,
	}
	if diff := cmp.Diff(want, codes(validation.Validate(registrationSchema(t), record))); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePatternRejectsWrongCharacterClass(t *testing.T) {
	schema := registrationSchema(t)

	record := validRegistration()
	record["postalCode"] = "1A2B3C"
	result := validation.Validate(schema, record)
	issue, ok := result.Get("postalCode")
	if !ok {
		t.Fatalf("expected postalCode issue, got %v", result.Messages())
	}
	if issue.Code != validation.CodePattern || issue.Message != "must be 6 digits" {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if len(result) != 1 {
		t.Fatalf("expected a single issue, got %v", result.Messages())
	}

	for _, value := range []string{"5600011", "56000", "560 01"} {
		record["postalCode"] = value
		if _, ok := validation.Validate(schema, record).Get("postalCode"); !ok {
			t.Fatalf("expected %q to fail the anchored pattern", value)
		}
	}

	record["postalCode"] = "560001"
	if result := validation.Validate(schema, record); !result.Valid() {
		t.Fatalf("expected matching postal code to pass, got %v", result.Messages())
	}
}

func TestValidateNumericCoercion(t *testing.T) {
	schema := registrationSchema(t)

	cases := []struct {
		value any
		code  string
	}{
		{value: "4", code: ""},
		{value: " 12.5 ", code: ""},
		{value: float64(7), code: ""},
		{value: 3, code: ""},
		{value: "abc", code: validation.CodeNotANumber},
		{value: "NaN", code: validation.CodeNotANumber},
		{value: "-1", code: validation.CodeTooSmall},
		{value: "51", code: validation.CodeTooBig},
		{value: "0", code: ""},
	}

	for _, tc := range cases {
		record := validRegistration()
		record["experienceYears"] = tc.value
		issue, failed := validation.Validate(schema, record).Get("experienceYears")
		if tc.code == "" {
			if failed {
				t.Fatalf("value %v: unexpected issue %+v", tc.value, issue)
			}
			continue
		}
		if !failed || issue.Code != tc.code {
			t.Fatalf("value %v: expected %s, got %+v", tc.value, tc.code, issue)
		}
	}

	record := validRegistration()
	record["experienceYears"] = "abc"
	if got := validation.Validate(schema, record)["experienceYears"].Message; got != "must be a number" {
		t.Fatalf("unexpected message %q", got)
	}
	record["experienceYears"] = "51"
	if got := validation.Validate(schema, record)["experienceYears"].Message; got != "must be at most 50" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidatePasswordTooShort(t *testing.T) {
	result := validation.Validate(passwordSchema(t), model.Record{
		"newPassword":     "abc",
		"confirmPassword": "abc",
	})

	want := map[string]string{"newPassword": "must be at least 8 characters"}
	if diff := cmp.Diff(want, result.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCrossFieldAttachesToDependent(t *testing.T) {
	schema := passwordSchema(t)

	result := validation.Validate(schema, model.Record{
		"newPassword":     "goodpass1",
		"confirmPassword": "goodpass2",
	})
	want := map[string]string{"confirmPassword": validation.CodeMismatch}
	if diff := cmp.Diff(want, codes(result)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := result["confirmPassword"].Message; got != "must match New Password" {
		t.Fatalf("unexpected message %q", got)
	}

	result = validation.Validate(schema, model.Record{
		"newPassword":     "goodpass1",
		"confirmPassword": "goodpass1",
	})
	if !result.Valid() {
		t.Fatalf("expected equal passwords to pass, got %v", result.Messages())
	}
}

func TestValidateCrossFieldSkippedWhenDependentFails(t *testing.T) {
	result := validation.Validate(passwordSchema(t), model.Record{
		"newPassword": "goodpass1",
	})
	want := map[string]string{"confirmPassword": validation.CodeRequired}
	if diff := cmp.Diff(want, codes(result)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	schema := registrationSchema(t)
	record := model.Record{
		"fullName":   "A",
		"email":      "bad",
		"postalCode": "1A2B3C",
	}
	before := record.Clone()

	first := validation.Validate(schema, record)
	second := validation.Validate(schema, record)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, record); diff != "" {
		t.Fatalf("record mutated (-before +after):\n%s", diff)
	}
}

func TestValidateSkipsDisabledFields(t *testing.T) {
	schema, err := model.NewBuilder("experience").
		Field(model.Field{Key: "hasExperience", Kind: model.FieldKindBoolean}).
		Field(model.Field{Key: "employer", Kind: model.FieldKindText, Required: true, EnabledWhen: "hasExperience == true"}).
		Field(model.Field{Key: "broken", Kind: model.FieldKindText, Required: true, EnabledWhen: "hasExperience = true"}).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	result := validation.Validate(schema, model.Record{"hasExperience": false})
	want := map[string]string{"broken": validation.CodeRequired}
	if diff := cmp.Diff(want, codes(result)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	result = validation.Validate(schema, model.Record{"hasExperience": true, "broken": "x"})
	want = map[string]string{"employer": validation.CodeRequired}
	if diff := cmp.Diff(want, codes(result)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	engine := validation.New()
	if engine.Enabled(schema, model.Record{"hasExperience": false}, "employer") {
		t.Fatalf("expected employer to be disabled")
	}
}

func TestValidateBooleanAndDates(t *testing.T) {
	schema, err := model.NewBuilder("terms").
		Field(model.Field{Key: "acceptTerms", Kind: model.FieldKindBoolean, Required: true}).
		Field(model.Field{Key: "dateOfBirth", Kind: model.FieldKindDate, Rules: []model.ValidationRule{model.DateAfter("1950-01-01"), model.DateBefore("2010-01-01")}}).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	cases := []struct {
		record model.Record
		want   map[string]string
	}{
		{record: model.Record{"acceptTerms": true, "dateOfBirth": "1990-05-17"}, want: map[string]string{}},
		{record: model.Record{"acceptTerms": false}, want: map[string]string{"acceptTerms": validation.CodeRequired}},
		{record: model.Record{"acceptTerms": "true", "dateOfBirth": "17/05/1990"}, want: map[string]string{"dateOfBirth": validation.CodeInvalidDate}},
		{record: model.Record{"acceptTerms": true, "dateOfBirth": "1940-01-01"}, want: map[string]string{"dateOfBirth": validation.CodeDateTooEarly}},
		{record: model.Record{"acceptTerms": true, "dateOfBirth": "2012-01-01"}, want: map[string]string{"dateOfBirth": validation.CodeDateTooLate}},
		{record: model.Record{"acceptTerms": "yes please"}, want: map[string]string{"acceptTerms": validation.CodeInvalidType}},
	}
	for i, tc := range cases {
		if diff := cmp.Diff(tc.want, codes(validation.Validate(schema, tc.record))); diff != "" {
			t.Fatalf("case %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestValidateFileFields(t *testing.T) {
	schema, err := model.NewBuilder("documents").
		Field(model.Field{
			Key:      "resume",
			Kind:     model.FieldKindFile,
			Required: true,
			Rules:    []model.ValidationRule{model.FileTypes("pdf", "docx"), model.MaxFileSize(1024)},
		}).
		Field(model.Field{Key: "photo", Kind: model.FieldKindFile}).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	rejected := errors.New("flagged by scanner")
	engine := validation.New(validation.WithFileValidator(func(field model.Field, file model.FileHandle) error {
		if file.Ref == "quarantined" {
			return rejected
		}
		return nil
	}))

	cases := []struct {
		value   any
		code    string
		message string
	}{
		{value: model.FileHandle{Name: "cv.pdf", Size: 512, Ref: "blob-1"}},
		{value: &model.FileHandle{Name: "cv.DOCX", Size: 10, Ref: "blob-2"}},
		{value: model.FileHandle{}, code: validation.CodeRequired},
		{value: model.FileHandle{Name: "cv.exe", Size: 10, Ref: "blob-3"}, code: validation.CodeInvalidFile},
		{value: model.FileHandle{Name: "cv.pdf", Size: 4096, Ref: "blob-4"}, code: validation.CodeFileTooLarge, message: "must be 1024 bytes or smaller"},
		{value: model.FileHandle{Name: "cv.pdf", Size: 10, Ref: "quarantined"}, code: validation.CodeInvalidFile, message: "flagged by scanner"},
		{value: "cv.pdf", code: validation.CodeInvalidType},
	}

	for i, tc := range cases {
		result := engine.Validate(schema, model.Record{"resume": tc.value})
		issue, failed := result.Get("resume")
		if tc.code == "" {
			if failed {
				t.Fatalf("case %d: unexpected issue %+v", i, issue)
			}
			continue
		}
		if !failed || issue.Code != tc.code {
			t.Fatalf("case %d: expected %s, got %+v", i, tc.code, issue)
		}
		if tc.message != "" && issue.Message != tc.message {
			t.Fatalf("case %d: expected message %q, got %q", i, tc.message, issue.Message)
		}
	}
}

func TestValidateFieldIncremental(t *testing.T) {
	schema := passwordSchema(t)
	engine := validation.New()

	record := model.Record{"newPassword": "goodpass1", "confirmPassword": "goodpass2"}
	if _, failed := engine.ValidateField(schema, record, "newPassword"); failed {
		t.Fatalf("expected newPassword to pass on its own")
	}
	issue, failed := engine.ValidateField(schema, record, "confirmPassword")
	if !failed || issue.Code != validation.CodeMismatch {
		t.Fatalf("expected mismatch, got %+v", issue)
	}
	if _, failed := engine.ValidateField(schema, record, "unknown"); failed {
		t.Fatalf("unknown keys never fail")
	}
}

func TestResultFirstFollowsSchemaOrder(t *testing.T) {
	schema := registrationSchema(t)
	result := validation.Validate(schema, model.Record{"fullName": "Asha Rao", "email": "asha@example.com"})

	first, ok := result.First(schema)
	if !ok || first.Field != "phone" {
		t.Fatalf("expected phone to be first failing field, got %+v", first)
	}
	if diff := cmp.Diff([]string{"phone", "postalCode"}, result.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeServerOverwritesClient(t *testing.T) {
	client := validation.Result{
		"email": {Field: "email", Code: validation.CodeInvalidEmail, Message: "must be a valid email address", Source: validation.SourceClient},
		"phone": {Field: "phone", Code: validation.CodeRequired, Message: "this field is required", Source: validation.SourceClient},
	}
	server := validation.Result{
		"email": {Field: "email", Code: validation.CodeServer, Message: "already registered", Source: validation.SourceServer},
	}

	merged := validation.Merge(client, server)
	want := map[string]string{"email": "already registered", "phone": "this field is required"}
	if diff := cmp.Diff(want, merged.Messages()); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if client["email"].Source != validation.SourceClient {
		t.Fatalf("client result must not be modified")
	}
	if got := merged.BySource(validation.SourceServer).Keys(); len(got) != 1 || got[0] != "email" {
		t.Fatalf("unexpected server keys %v", got)
	}
}
