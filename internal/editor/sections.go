package editor

import (
	"fmt"
	"strings"

	"github.com/luminedge/academy-cms/internal/content"
)

// Definition describes one editable content type: its section name, the
// default payload used when the section does not exist yet, the field limits
// enforced before every save, and the sections whose caches must also be
// invalidated because they denormalize this section's data.
type Definition struct {
	Section    string
	Defaults   map[string]any
	Limits     FieldLimits
	Dependents []string
}

// FieldLimit declares the local validation applied to one field.
type FieldLimit struct {
	MaxLen   int
	Required bool
}

// FieldLimits maps field paths to limits. A path starting with "*." applies
// to that field inside every item of a map-of-items section.
type FieldLimits map[string]FieldLimit

// ValidationError reports a field that failed its declared limit. It blocks
// a save client-side; the store is never called.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

// Validate checks payload against the limits table. Returns the first
// violation found as a *ValidationError, or nil.
func (l FieldLimits) Validate(payload map[string]any) error {
	for field, lim := range l {
		if itemField, ok := strings.CutPrefix(field, "*."); ok {
			for key, v := range payload {
				if key == content.MetadataKey {
					continue
				}
				item, ok := v.(map[string]any)
				if !ok {
					continue
				}
				if err := checkField(key+"."+itemField, item[itemField], lim); err != nil {
					return err
				}
			}
			continue
		}
		if err := checkField(field, lookup(payload, field), lim); err != nil {
			return err
		}
	}
	return nil
}

func checkField(name string, v any, lim FieldLimit) error {
	s, isString := v.(string)
	if lim.Required && (v == nil || (isString && s == "")) {
		return &ValidationError{Field: name, Reason: "is required"}
	}
	if isString && lim.MaxLen > 0 && len([]rune(s)) > lim.MaxLen {
		return &ValidationError{Field: name, Reason: fmt.Sprintf("exceeds %d characters", lim.MaxLen)}
	}
	return nil
}

func lookup(m map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var cur any = m
	for _, p := range parts {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[p]
	}
	return cur
}

// definitions registers every editable content type of the site. Map-of-items
// sections (testimonials, courses, faculty, ...) keep one item per generated
// key; single-document sections (hero, about) keep named fields.
var definitions = map[string]Definition{
	"hero": {
		Section: "hero",
		Defaults: map[string]any{
			"headline":    "",
			"subheadline": "",
			"ctaText":     "Explore courses",
			"ctaLink":     "/courses",
		},
		Limits: FieldLimits{
			"headline":    {MaxLen: 60, Required: true},
			"subheadline": {MaxLen: 160},
			"ctaText":     {MaxLen: 30},
			"ctaLink":     {MaxLen: 200},
		},
	},
	"about": {
		Section: "about",
		Defaults: map[string]any{
			"headline":        "",
			"body":            "",
			"directorMessage": "",
		},
		Limits: FieldLimits{
			"headline":        {MaxLen: 80},
			"body":            {MaxLen: 4000},
			"directorMessage": {MaxLen: 2000},
		},
	},
	"testimonials": {
		Section:  "testimonials",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.quote":  {MaxLen: 280, Required: true},
			"*.author": {MaxLen: 80, Required: true},
			"*.role":   {MaxLen: 80},
		},
	},
	"ctaBanners": {
		Section:  "ctaBanners",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.title":      {MaxLen: 80, Required: true},
			"*.body":       {MaxLen: 200},
			"*.buttonText": {MaxLen: 30},
			"*.buttonLink": {MaxLen: 200},
		},
	},
	"leadership": {
		Section:  "leadership",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.name":  {MaxLen: 80, Required: true},
			"*.title": {MaxLen: 80},
			"*.bio":   {MaxLen: 1200},
			"*.photo": {MaxLen: 300},
		},
		// the director's message shown on the about page is editable from
		// the leadership editor as well, so both caches must drop together
		Dependents: []string{"about"},
	},
	"courses": {
		Section:  "courses",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.title":    {MaxLen: 100, Required: true},
			"*.summary":  {MaxLen: 300},
			"*.duration": {MaxLen: 40},
			"*.level":    {MaxLen: 30},
		},
	},
	"certifications": {
		Section:  "certifications",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.title": {MaxLen: 100, Required: true},
			"*.body":  {MaxLen: 400},
			"*.badge": {MaxLen: 300},
		},
	},
	"faculty": {
		Section:  "faculty",
		Defaults: map[string]any{},
		Limits: FieldLimits{
			"*.name":  {MaxLen: 80, Required: true},
			"*.title": {MaxLen: 80},
			"*.bio":   {MaxLen: 800},
			"*.photo": {MaxLen: 300},
		},
	},
}

// DefinitionFor returns the registered definition for a section name.
func DefinitionFor(section string) (Definition, bool) {
	def, ok := definitions[section]
	return def, ok
}

// Sections lists the registered content types.
func Sections() []string {
	out := make([]string, 0, len(definitions))
	for name := range definitions {
		out = append(out, name)
	}
	return out
}
