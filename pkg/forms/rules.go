package forms

import "github.com/goliatone/go-formstate/pkg/model"

// Shared identifier formats.
const (
	PostalCodePattern = `[0-9]{6}`
	PhonePattern      = `[0-9]{10}`
	PANPattern        = `[A-Z]{5}[0-9]{4}[A-Z]`
	GSTINPattern      = `[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]`
	AadhaarPattern    = `[2-9][0-9]{11}`
	IFSCPattern       = `[A-Z]{4}0[A-Z0-9]{6}`
)

// PasswordMinLength is the shortest accepted password.
const PasswordMinLength = 8

func postalCode(required bool) model.Field {
	return model.Field{
		Key:         "postalCode",
		Label:       "Postal Code",
		Kind:        model.FieldKindText,
		Required:    required,
		Placeholder: "560001",
		Rules:       []model.ValidationRule{model.Pattern(PostalCodePattern, "6 digits")},
	}
}

func phone(key, label string, required bool) model.Field {
	return model.Field{
		Key:         key,
		Label:       label,
		Kind:        model.FieldKindPhone,
		Required:    required,
		Placeholder: "9876543210",
		Rules:       []model.ValidationRule{model.Pattern(PhonePattern, "10 digits")},
	}
}

func email(key, label string) model.Field {
	return model.Field{Key: key, Label: label, Kind: model.FieldKindEmail, Required: true}
}

func text(key, label string, required bool, rules ...model.ValidationRule) model.Field {
	return model.Field{Key: key, Label: label, Kind: model.FieldKindText, Required: required, Rules: rules}
}

func document(key, label string, required bool) model.Field {
	return model.Field{
		Key:      key,
		Label:    label,
		Kind:     model.FieldKindFile,
		Required: required,
		Rules: []model.ValidationRule{
			model.FileTypes("pdf", "jpg", "jpeg", "png"),
			model.MaxFileSize(5 << 20),
		},
	}
}

func password(key, label string) model.Field {
	return model.Field{
		Key:      key,
		Label:    label,
		Kind:     model.FieldKindPassword,
		Required: true,
		Rules:    []model.ValidationRule{model.MinLength(PasswordMinLength), model.MaxLength(64)},
	}
}

func confirm(key, label, target string) model.Field {
	return model.Field{
		Key:      key,
		Label:    label,
		Kind:     model.FieldKindPassword,
		Required: true,
		Rules:    []model.ValidationRule{model.WithMessage(model.EqualsField(target), "passwords do not match")},
	}
}

func addressFields(required bool) []model.Field {
	return []model.Field{
		text("addressLine", "Address", required, model.MaxLength(200)),
		text("city", "City", required, model.MaxLength(80)),
		model.Field{Key: "state", Label: "State", Kind: model.FieldKindEnum, Required: required, Options: States},
		postalCode(required),
	}
}

// States lists the state options offered by address sections.
var States = []string{
	"Andhra Pradesh", "Assam", "Bihar", "Delhi", "Gujarat", "Karnataka", "Kerala",
	"Madhya Pradesh", "Maharashtra", "Odisha", "Punjab", "Rajasthan", "Tamil Nadu",
	"Telangana", "Uttar Pradesh", "West Bengal",
}
