package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

// Document is the canonical structured resume. A Document value is treated as
// immutable once it is referenced by a version; mutations go through resume/patch
// which always returns a fresh copy.
type Document struct {
	Contact        Contact      `json:"contact"`
	Summary        string       `json:"summary"`
	Skills         Skills       `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications"`
	Languages      []string     `json:"languages"`
}

// Contact captures top-of-resume identity details.
type Contact struct {
	Name     string   `json:"name"`
	Headline string   `json:"headline"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Links    []string `json:"links"`
}

// Skills groups skills into technical and soft lists.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

// Experience represents a work history entry.
type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Achievements []string `json:"achievements"`
}

// Education represents an education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

var resumeDatePattern = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2]))?$`)

// Validate enforces field formatting rules. Empty documents are valid; the
// scoring engine reports incompleteness instead.
func (d Document) Validate() error {
	if email := strings.TrimSpace(d.Contact.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("contact.email is not a valid address")
		}
	}
	for i, link := range d.Contact.Links {
		if !isFullURL(strings.TrimSpace(link)) {
			return fmt.Errorf("contact.links[%d] must be a full URL", i)
		}
	}
	for i, exp := range d.Experience {
		if err := validateDateField(exp.Start, fmt.Sprintf("experience[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(exp.End, fmt.Sprintf("experience[%d].end", i)); err != nil {
			return err
		}
	}
	for i, edu := range d.Education {
		if err := validateDateField(edu.Start, fmt.Sprintf("education[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(edu.End, fmt.Sprintf("education[%d].end", i)); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Contact.Links = cloneStrings(d.Contact.Links)
	out.Skills.Technical = cloneStrings(d.Skills.Technical)
	out.Skills.Soft = cloneStrings(d.Skills.Soft)
	out.Certifications = cloneStrings(d.Certifications)
	out.Languages = cloneStrings(d.Languages)
	if d.Experience != nil {
		out.Experience = make([]Experience, len(d.Experience))
		for i, exp := range d.Experience {
			exp.Achievements = cloneStrings(exp.Achievements)
			out.Experience[i] = exp
		}
	}
	if d.Education != nil {
		out.Education = append([]Education(nil), d.Education...)
	}
	return out
}

// ToTree converts the document into a generic JSON tree (map[string]any / []any).
func (d Document) ToTree() (map[string]any, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, fmt.Errorf("decode document tree: %w", err)
	}
	return tree, nil
}

// FromTree decodes a generic JSON tree back into a Document. Unknown fields are
// rejected so a patch can never silently write to a path the model does not have.
func FromTree(tree map[string]any) (Document, error) {
	payload, err := json.Marshal(tree)
	if err != nil {
		return Document{}, fmt.Errorf("encode document tree: %w", err)
	}
	return Decode(payload)
}

// Decode strictly decodes a JSON document.
func Decode(payload []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// ErrEmptyDocument is returned by callers that require content.
var ErrEmptyDocument = errors.New("document is empty")

// IsEmpty reports whether the document carries no meaningful content.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Text()) == ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func isFullURL(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func validateDateField(value, field string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "present") {
		return nil
	}
	if !resumeDatePattern.MatchString(trimmed) {
		return fmt.Errorf("%s must be YYYY, YYYY-MM or Present", field)
	}
	return nil
}
