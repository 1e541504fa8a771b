package knowledge

import "strings"

// DocumentType classifies a knowledge-base document by its directory.
type DocumentType string

const (
	TypeSelector DocumentType = "selector"
	TypeWorkflow DocumentType = "workflow"
	TypePattern  DocumentType = "pattern"
	TypeFixture  DocumentType = "fixture"
)

// Document is one knowledge-base file after front-matter extraction.
// ID is the slash-separated path relative to the knowledge root.
type Document struct {
	ID   string
	Text string
	Type DocumentType
	Meta map[string]string
}

// classifier is ordered; the first matching path fragment wins.
var classifier = []struct {
	fragment string
	docType  DocumentType
}{
	{"/selectors/", TypeSelector},
	{"/workflows/", TypeWorkflow},
	{"/patterns/", TypePattern},
}

// Classify infers a DocumentType purely from the path. Anything outside the
// selector, workflow and pattern directories is a fixture.
func Classify(relPath string) DocumentType {
	p := "/" + strings.TrimPrefix(strings.ReplaceAll(relPath, "\\", "/"), "/")
	for _, c := range classifier {
		if strings.Contains(p, c.fragment) {
			return c.docType
		}
	}
	return TypeFixture
}

// IsValid reports whether t is one of the four known types.
func (t DocumentType) IsValid() bool {
	return t == TypeSelector || t == TypeWorkflow || t == TypePattern || t == TypeFixture
}
