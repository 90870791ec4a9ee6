package model

import internalmodel "github.com/goliatone/go-formstate/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindText     = internalmodel.FieldKindText
	FieldKindTextArea = internalmodel.FieldKindTextArea
	FieldKindPassword = internalmodel.FieldKindPassword
	FieldKindPhone    = internalmodel.FieldKindPhone
	FieldKindEmail    = internalmodel.FieldKindEmail
	FieldKindNumber   = internalmodel.FieldKindNumber
	FieldKindDate     = internalmodel.FieldKindDate
	FieldKindEnum     = internalmodel.FieldKindEnum
	FieldKindFile     = internalmodel.FieldKindFile
	FieldKindBoolean  = internalmodel.FieldKindBoolean
)

const (
	ValidationRuleMin         = internalmodel.ValidationRuleMin
	ValidationRuleMax         = internalmodel.ValidationRuleMax
	ValidationRuleMinLength   = internalmodel.ValidationRuleMinLength
	ValidationRuleMaxLength   = internalmodel.ValidationRuleMaxLength
	ValidationRulePattern     = internalmodel.ValidationRulePattern
	ValidationRuleEnum        = internalmodel.ValidationRuleEnum
	ValidationRuleEqualsField = internalmodel.ValidationRuleEqualsField
	ValidationRuleFileTypes   = internalmodel.ValidationRuleFileTypes
	ValidationRuleMaxFileSize = internalmodel.ValidationRuleMaxFileSize
	ValidationRuleDateAfter   = internalmodel.ValidationRuleDateAfter
	ValidationRuleDateBefore  = internalmodel.ValidationRuleDateBefore
)

const (
	DateLayout     = internalmodel.DateLayout
	DefaultSection = internalmodel.DefaultSection
)

type Purpose = internalmodel.Purpose

const (
	PurposeCandidateRegistration  = internalmodel.PurposeCandidateRegistration
	PurposeEmployerRegistration   = internalmodel.PurposeEmployerRegistration
	PurposeCollegeRegistration    = internalmodel.PurposeCollegeRegistration
	PurposeExamCenterRegistration = internalmodel.PurposeExamCenterRegistration
	PurposeProfileUpdate          = internalmodel.PurposeProfileUpdate
	PurposePasswordChange         = internalmodel.PurposePasswordChange
	PurposeCampaign               = internalmodel.PurposeCampaign
)

type ValidationRule = internalmodel.ValidationRule
type Field = internalmodel.Field
type Section = internalmodel.Section
type Schema = internalmodel.Schema
type Record = internalmodel.Record
type FileHandle = internalmodel.FileHandle

var (
	ErrSchemaIDMissing  = internalmodel.ErrSchemaIDMissing
	ErrSectionIDMissing = internalmodel.ErrSectionIDMissing
	ErrFieldKeyMissing  = internalmodel.ErrFieldKeyMissing
	ErrDuplicateField   = internalmodel.ErrDuplicateField
	ErrUnknownKind      = internalmodel.ErrUnknownKind
	ErrUnknownReference = internalmodel.ErrUnknownReference
	ErrInvalidPattern   = internalmodel.ErrInvalidPattern
	ErrInvalidRule      = internalmodel.ErrInvalidRule
)

// IsEmpty reports whether a value counts as not provided.
func IsEmpty(value any) bool { return internalmodel.IsEmpty(value) }

// Stringify renders a scalar value the way it would appear in an input.
func Stringify(value any) string { return internalmodel.Stringify(value) }

// Text returns a field value as it is validated and sent.
func Text(kind FieldKind, value any) string { return internalmodel.Text(kind, value) }

// CompilePattern compiles an anchored pattern rule expression.
var CompilePattern = internalmodel.CompilePattern

// SplitList splits a comma separated rule parameter.
var SplitList = internalmodel.SplitList

// ParseDate parses a DateLayout value.
var ParseDate = internalmodel.ParseDate

// DefaultLabeler turns a field key into a label.
var DefaultLabeler = internalmodel.DefaultLabeler
