package schemafile_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/forms"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/schemafile"
	"github.com/goliatone/go-formstate/pkg/validation"
)

const passwordYAML = `
forms:
  password-change:
    title: Change Password
    purpose: password_change
    sections:
      - id: password
        title: Change Password
        description: Use at least 8 characters.
        fields:
          - key: newPassword
            kind: password
            required: true
            minLength: 8
          - key: confirmPassword
            kind: password
            required: true
            equals: newPassword
`

const addressJSON = `{
  "forms": {
    "address": {
      "title": "Address",
      "sections": [
        {
          "id": "address",
          "fields": [
            {"key": "postalCode", "required": true, "pattern": "[0-9]{6}", "patternHint": "6 digits"},
            {"key": "city", "rules": [{"kind": "maxLength", "params": {"value": "40"}}]}
          ]
        }
      ]
    }
  }
}`

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/password.yaml": {Data: []byte(passwordYAML)},
		"forms/address.json":  {Data: []byte(addressJSON)},
		"forms/README.md":     {Data: []byte("ignored")},
	}

	store, err := schemafile.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"address", "password-change"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got := store.Source("address"); got != "forms/address.json" {
		t.Fatalf("unexpected source %q", got)
	}

	password, _ := store.Form("password-change")
	section, _ := password.Section("password")
	if section.Description != "Use at least 8 characters." || password.Purpose() != model.PurposePasswordChange {
		t.Fatalf("unexpected schema metadata: %+v %s", section, password.Purpose())
	}

	result := validation.Validate(password, model.Record{"newPassword": "goodpass1", "confirmPassword": "goodpass2"})
	if diff := cmp.Diff([]string{"confirmPassword"}, result.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	address, _ := store.Form("address")
	result = validation.Validate(address, model.Record{"postalCode": "1A2B3C"})
	if got := result["postalCode"].Message; got != "must be 6 digits" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestLoadFSRejectsDuplicatesAndBadFields(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": {Data: []byte(passwordYAML)},
		"b.yaml": {Data: []byte(passwordYAML)},
	}
	if _, err := schemafile.LoadFS(dup); !errors.Is(err, schemafile.ErrDuplicateForm) {
		t.Fatalf("expected ErrDuplicateForm, got %v", err)
	}

	bad := fstest.MapFS{
		"bad.yaml": {Data: []byte("forms:\n  x:\n    sections:\n      - id: s\n        fields:\n          - key: a\n            equals: missing\n")},
	}
	if _, err := schemafile.LoadFS(bad); !errors.Is(err, model.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}

	empty := fstest.MapFS{"empty.json": {Data: []byte("  ")}}
	if _, err := schemafile.LoadFS(empty); !errors.Is(err, schemafile.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, format := range []schemafile.Format{schemafile.FormatYAML, schemafile.FormatJSON} {
		original := forms.Employer()
		data, err := schemafile.Marshal(format, original)
		if err != nil {
			t.Fatalf("%s: marshal: %v", format, err)
		}
		store, err := schemafile.Parse(data, "employer."+string(format))
		if err != nil {
			t.Fatalf("%s: parse: %v\n%s", format, err, data)
		}
		loaded, ok := store.Form(original.ID())
		if !ok {
			t.Fatalf("%s: form missing", format)
		}
		if diff := cmp.Diff(original.Fields(), loaded.Fields()); diff != "" {
			t.Fatalf("%s: fields mismatch (-want +got):\n%s", format, diff)
		}
		if diff := cmp.Diff(original.Sections(), loaded.Sections()); diff != "" {
			t.Fatalf("%s: sections mismatch (-want +got):\n%s", format, diff)
		}
	}
}
