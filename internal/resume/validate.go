package resume

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError reports one violated field constraint, addressed by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated constraint of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(JSONFieldName)
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			return field.Interface().(Date).Time
		}, Date{})
		_ = v.RegisterValidation("template", func(fl validator.FieldLevel) bool {
			return IsTemplate(fl.Field().String())
		})
		_ = v.RegisterValidation("font_family", func(fl validator.FieldLevel) bool {
			return slices.Contains(fontFamilies, fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks the content against the field constraints and reports all violations at once.
func Validate(c Content) error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate resume: %w", err)
	}

	return FromValidator(verrs)
}

// JSONFieldName names struct fields by their JSON key in validator errors.
func JSONFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// FromValidator converts validator errors into a ValidationError. Field paths
// drop the root struct name.
func FromValidator(verrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: messageFor(field, fe)})
	}
	return out
}

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validatorInstance().Var(s, "required,email") == nil
}

func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		return "please provide a valid email"
	case "template":
		return "please select a valid template"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "font_family":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(fontFamilies, ", "))
	default:
		return field + " is invalid"
	}
}

// Normalize trims free-text identity fields, fills enum defaults and replaces nil collections with empty ones.
func (c *Content) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Template = strings.TrimSpace(c.Template)

	p := &c.PersonalInfo
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)

	if c.Experience == nil {
		c.Experience = []Experience{}
	}
	for i := range c.Experience {
		e := &c.Experience[i]
		e.Company = strings.TrimSpace(e.Company)
		e.Position = strings.TrimSpace(e.Position)
		if e.Achievements == nil {
			e.Achievements = []string{}
		}
	}

	if c.Education == nil {
		c.Education = []Education{}
	}
	for i := range c.Education {
		e := &c.Education[i]
		e.Institution = strings.TrimSpace(e.Institution)
		e.Degree = strings.TrimSpace(e.Degree)
	}

	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	for i := range c.Skills {
		s := &c.Skills[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Level == "" {
			s.Level = defaultSkillLevel
		}
		if s.Category == "" {
			s.Category = defaultSkillCategory
		}
	}

	if c.Projects == nil {
		c.Projects = []Project{}
	}
	for i := range c.Projects {
		p := &c.Projects[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
	}

	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	for i := range c.Certifications {
		cert := &c.Certifications[i]
		cert.Name = strings.TrimSpace(cert.Name)
		cert.Issuer = strings.TrimSpace(cert.Issuer)
	}

	if c.Languages == nil {
		c.Languages = []Language{}
	}
	for i := range c.Languages {
		l := &c.Languages[i]
		l.Name = strings.TrimSpace(l.Name)
		if l.Proficiency == "" {
			l.Proficiency = defaultLanguageProficiency
		}
	}

	if c.CustomSections == nil {
		c.CustomSections = []CustomSection{}
	}
	for i := range c.CustomSections {
		c.CustomSections[i].Title = strings.TrimSpace(c.CustomSections[i].Title)
	}

	s := &c.Styling
	if s.PrimaryColor == "" {
		s.PrimaryColor = defaultPrimaryColor
	}
	if s.SecondaryColor == "" {
		s.SecondaryColor = defaultSecondaryColor
	}
	if s.FontFamily == "" {
		s.FontFamily = defaultFontFamily
	}
	if s.FontSize == "" {
		s.FontSize = defaultFontSize
	}
	if s.Spacing == "" {
		s.Spacing = defaultSpacing
	}
}
