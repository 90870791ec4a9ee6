// Package forms holds the built-in Form Schemas of the recruitment platform.
package forms

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Form identifiers.
const (
	CandidateRegistration  = "candidate-registration"
	EmployerRegistration   = "employer-registration"
	CollegeRegistration    = "college-registration"
	ExamCenterRegistration = "exam-center-registration"
	ProfileUpdate          = "profile-update"
	PasswordChange         = "password-change"
)

var builtin = map[string]func() *model.Schema{
	CandidateRegistration:  Candidate,
	EmployerRegistration:   Employer,
	CollegeRegistration:    College,
	ExamCenterRegistration: ExamCenter,
	ProfileUpdate:          Profile,
	PasswordChange:         Password,
}

// IDs lists the built-in form ids, sorted.
func IDs() []string {
	out := make([]string, 0, len(builtin))
	for id := range builtin {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Get builds the form with the given id.
func Get(id string) (*model.Schema, bool) {
	build, ok := builtin[id]
	if !ok {
		return nil, false
	}
	return build(), true
}

// All builds every built-in form in id order.
func All() []*model.Schema {
	ids := IDs()
	out := make([]*model.Schema, 0, len(ids))
	for _, id := range ids {
		out = append(out, builtin[id]())
	}
	return out
}

// Candidate is the job seeker registration form.
func Candidate() *model.Schema {
	return model.NewBuilder(CandidateRegistration).
		Title("Candidate Registration").
		Purpose(model.PurposeCandidateRegistration).
		Section("personal", "Personal Information",
			text("fullName", "Full Name", true, model.MinLength(2), model.MaxLength(100)),
			model.Field{Key: "dateOfBirth", Label: "Date of Birth", Kind: model.FieldKindDate, Required: true,
				Rules: []model.ValidationRule{model.DateAfter("1950-01-01"), model.DateBefore("2010-01-01")}},
			model.Field{Key: "gender", Kind: model.FieldKindEnum, Options: []string{"female", "male", "other", "undisclosed"}},
			email("email", "Email"),
			phone("phone", "Mobile Number", true),
		).
		Section("address", "Address", addressFields(true)...).
		Section("education", "Education",
			model.Field{Key: "qualification", Kind: model.FieldKindEnum, Required: true,
				Options: []string{"10th", "12th", "diploma", "graduate", "postgraduate", "doctorate"}},
			text("institution", "Institution", true, model.MaxLength(150)),
			model.Field{Key: "graduationYear", Kind: model.FieldKindNumber, Required: true,
				Rules: []model.ValidationRule{model.Min(1970), model.Max(2030)}},
			model.Field{Key: "cgpa", Label: "CGPA", Kind: model.FieldKindNumber,
				Rules: []model.ValidationRule{model.Min(0), model.Max(10)}},
		).
		Section("experience", "Experience",
			model.Field{Key: "hasExperience", Label: "I have work experience", Kind: model.FieldKindBoolean, Default: false},
			model.Field{Key: "experienceYears", Label: "Years of Experience", Kind: model.FieldKindNumber, Required: true,
				EnabledWhen: "hasExperience == true", Rules: []model.ValidationRule{model.Min(0), model.Max(50)}},
			model.Field{Key: "currentEmployer", Kind: model.FieldKindText, EnabledWhen: "hasExperience == true"},
		).
		Section("documents", "Documents",
			document("resume", "Resume", true),
			document("idProof", "Identity Proof", true),
			document("certificates", "Certificates", false),
		).
		Section("account", "Account",
			password("password", "Password"),
			confirm("confirmPassword", "Confirm Password", "password"),
			model.Field{Key: "acceptTerms", Label: "I accept the terms and conditions", Kind: model.FieldKindBoolean, Required: true},
		).
		MustBuild()
}

// Employer is the company registration form.
func Employer() *model.Schema {
	return model.NewBuilder(EmployerRegistration).
		Title("Employer Registration").
		Purpose(model.PurposeEmployerRegistration).
		Section("company", "Company Details",
			text("companyName", "Company Name", true, model.MinLength(2), model.MaxLength(150)),
			model.Field{Key: "industry", Kind: model.FieldKindEnum, Required: true,
				Options: []string{"it", "manufacturing", "finance", "healthcare", "education", "retail", "other"}},
			model.Field{Key: "companySize", Kind: model.FieldKindEnum, Required: true,
				Options: []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}},
			model.Field{Key: "website", Kind: model.FieldKindText,
				Rules: []model.ValidationRule{model.Pattern(`https?://\S+`, "a http(s) address")}},
		).
		Section("registration", "Registration Numbers",
			text("panNumber", "PAN", true, model.Pattern(PANPattern, "a PAN like ABCDE1234F")),
			text("gstin", "GSTIN", true, model.Pattern(GSTINPattern, "a 15 character GSTIN")),
			document("incorporationCertificate", "Certificate of Incorporation", true),
		).
		Section("contact", "Contact Person",
			text("contactName", "Contact Name", true, model.MinLength(2)),
			text("designation", "Designation", false, model.MaxLength(80)),
			email("email", "Work Email"),
			phone("phone", "Phone", true),
		).
		Section("address", "Address", addressFields(true)...).
		Section("account", "Account",
			password("password", "Password"),
			confirm("confirmPassword", "Confirm Password", "password"),
		).
		MustBuild()
}

// College is the institution registration form.
func College() *model.Schema {
	return model.NewBuilder(CollegeRegistration).
		Title("College Registration").
		Purpose(model.PurposeCollegeRegistration).
		Section("institution", "Institution Details",
			text("collegeName", "College Name", true, model.MinLength(3), model.MaxLength(200)),
			text("collegeCode", "College Code", true, model.Pattern(`[A-Z]{2,4}[0-9]{3,5}`, "2-4 letters followed by 3-5 digits")),
			text("university", "Affiliated University", true),
			model.Field{Key: "establishedYear", Kind: model.FieldKindNumber, Required: true,
				Rules: []model.ValidationRule{model.Min(1800), model.Max(2030)}},
			model.Field{Key: "accreditation", Kind: model.FieldKindEnum, Options: []string{"A++", "A+", "A", "B++", "B+", "B", "C", "none"}},
			model.Field{Key: "studentCapacity", Kind: model.FieldKindNumber, Required: true,
				Rules: []model.ValidationRule{model.Min(1)}},
		).
		Section("contact", "Placement Officer",
			text("officerName", "Officer Name", true),
			email("email", "Email"),
			phone("phone", "Phone", true),
		).
		Section("address", "Address", addressFields(true)...).
		Section("documents", "Documents",
			document("affiliationLetter", "Affiliation Letter", true),
		).
		Section("account", "Account",
			password("password", "Password"),
			confirm("confirmPassword", "Confirm Password", "password"),
		).
		MustBuild()
}

// ExamCenter is the exam center registration form.
func ExamCenter() *model.Schema {
	return model.NewBuilder(ExamCenterRegistration).
		Title("Exam Center Registration").
		Purpose(model.PurposeExamCenterRegistration).
		Section("center", "Center Details",
			text("centerName", "Center Name", true, model.MinLength(3)),
			text("centerCode", "Center Code", true, model.Pattern(`EC[0-9]{4}`, "EC followed by 4 digits")),
			model.Field{Key: "seatingCapacity", Kind: model.FieldKindNumber, Required: true,
				Rules: []model.ValidationRule{model.Min(10), model.Max(5000)}},
			model.Field{Key: "computerLab", Label: "Computer based testing available", Kind: model.FieldKindBoolean},
			model.Field{Key: "computers", Label: "Number of Computers", Kind: model.FieldKindNumber, Required: true,
				EnabledWhen: "computerLab == true", Rules: []model.ValidationRule{model.Min(1)}},
		).
		Section("address", "Address", addressFields(true)...).
		Section("contact", "Center Coordinator",
			text("coordinatorName", "Coordinator Name", true),
			email("email", "Email"),
			phone("phone", "Phone", true),
			phone("alternatePhone", "Alternate Phone", false),
		).
		Section("documents", "Documents",
			document("facilityPhotos", "Facility Photos", false),
			document("ownershipProof", "Ownership or Lease Proof", true),
		).
		MustBuild()
}

// Profile is the candidate profile update form. The email is shown but
// changes go through support, so it carries no edit rules.
func Profile() *model.Schema {
	return model.NewBuilder(ProfileUpdate).
		Title("Update Profile").
		Purpose(model.PurposeProfileUpdate).
		Section("personal", "Personal Information",
			text("fullName", "Full Name", true, model.MinLength(2), model.MaxLength(100)),
			email("email", "Email"),
			phone("phone", "Mobile Number", true),
			phone("alternatePhone", "Alternate Phone", false),
		).
		Section("address", "Address", addressFields(false)...).
		Section("professional", "Professional Details",
			text("headline", "Headline", false, model.MaxLength(120)),
			model.Field{Key: "skills", Kind: model.FieldKindTextArea, Rules: []model.ValidationRule{model.MaxLength(500)}},
			model.Field{Key: "expectedSalary", Label: "Expected Salary (LPA)", Kind: model.FieldKindNumber,
				Rules: []model.ValidationRule{model.Min(0), model.Max(500)}},
			model.Field{Key: "noticePeriod", Kind: model.FieldKindEnum, Options: []string{"immediate", "15 days", "30 days", "60 days", "90 days"}},
		).
		Section("documents", "Documents",
			document("resume", "Resume", false),
		).
		MustBuild()
}

// Password is the password change form.
func Password() *model.Schema {
	return model.NewBuilder(PasswordChange).
		Title("Change Password").
		Purpose(model.PurposePasswordChange).
		Section("password", "Change Password",
			model.Field{Key: "currentPassword", Label: "Current Password", Kind: model.FieldKindPassword, Required: true},
			password("newPassword", "New Password"),
			confirm("confirmPassword", "Confirm Password", "newPassword"),
		).
		MustBuild()
}
